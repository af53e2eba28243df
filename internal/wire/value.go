// Package wire defines frisbee's canonical serialization: a tagged,
// length-prefixed binary encoding for runtime values and message
// envelopes, plus the line framer used at the TCP boundary between
// environments (spec.md §6). Encoding a passive instance and decoding it
// back always yields a structurally independent copy, which is what
// enforces copy-by-value semantics whenever a value crosses a process or
// environment boundary (spec.md §9(b)).
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/frisbee-lang/frisbee/internal/object"
)

// Value type tags. Stable across versions; append-only.
const (
	tagInt uint8 = iota + 1
	tagStr
	tagBool
	tagVoid
	tagArray
	tagPassive
	tagProxy
)

// EncodeValue renders v in the canonical binary form.
func EncodeValue(v object.Value) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeValue(buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeValue parses the canonical binary form produced by EncodeValue. It
// errors if data has trailing bytes after one complete value, since a
// single call always decodes exactly one top-level value.
func DecodeValue(data []byte) (object.Value, error) {
	r := bytes.NewReader(data)
	v, err := readValue(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("wire: %d trailing byte(s) after value", r.Len())
	}
	return v, nil
}

func writeValue(w io.Writer, v object.Value) error {
	switch x := v.(type) {
	case object.Int:
		if err := writeUint8(w, tagInt); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, int64(x))

	case object.Str:
		if err := writeUint8(w, tagStr); err != nil {
			return err
		}
		return writeString(w, string(x))

	case object.Bool:
		if err := writeUint8(w, tagBool); err != nil {
			return err
		}
		var b uint8
		if x {
			b = 1
		}
		return writeUint8(w, b)

	case object.Void:
		return writeUint8(w, tagVoid)

	case *object.Array:
		if err := writeUint8(w, tagArray); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(x.Elems))); err != nil {
			return err
		}
		for _, e := range x.Elems {
			if err := writeValue(w, e); err != nil {
				return err
			}
		}
		return nil

	case *object.PassiveInstance:
		if err := writeUint8(w, tagPassive); err != nil {
			return err
		}
		if err := writeString(w, x.Module); err != nil {
			return err
		}
		if err := writeString(w, x.Type); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(x.Fields))); err != nil {
			return err
		}
		// Deterministic field order keeps repeated encodes of the same
		// value byte-identical.
		for _, name := range sortedKeys(x.Fields) {
			if err := writeString(w, name); err != nil {
				return err
			}
			if err := writeValue(w, x.Fields[name]); err != nil {
				return err
			}
		}
		return nil

	case *object.ActiveProxy:
		if err := writeUint8(w, tagProxy); err != nil {
			return err
		}
		if err := writeString(w, x.ActorID); err != nil {
			return err
		}
		return writeString(w, x.HomeEnv)

	default:
		return fmt.Errorf("wire: cannot encode value of type %T", v)
	}
}

func readValue(r io.Reader) (object.Value, error) {
	tag, err := readUint8(r)
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagInt:
		var n int64
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		return object.Int(n), nil

	case tagStr:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		return object.Str(s), nil

	case tagBool:
		b, err := readUint8(r)
		if err != nil {
			return nil, err
		}
		return object.Bool(b != 0), nil

	case tagVoid:
		return object.Void{}, nil

	case tagArray:
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, err
		}
		elems := make([]object.Value, count)
		for i := range elems {
			v, err := readValue(r)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &object.Array{Elems: elems}, nil

	case tagPassive:
		module, err := readString(r)
		if err != nil {
			return nil, err
		}
		typ, err := readString(r)
		if err != nil {
			return nil, err
		}
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, err
		}
		fields := make(map[string]object.Value, count)
		for i := uint32(0); i < count; i++ {
			name, err := readString(r)
			if err != nil {
				return nil, err
			}
			v, err := readValue(r)
			if err != nil {
				return nil, err
			}
			fields[name] = v
		}
		return object.NewPassiveInstance(module, typ, fields), nil

	case tagProxy:
		actorID, err := readString(r)
		if err != nil {
			return nil, err
		}
		homeEnv, err := readString(r)
		if err != nil {
			return nil, err
		}
		return &object.ActiveProxy{ActorID: actorID, HomeEnv: homeEnv}, nil

	default:
		return nil, fmt.Errorf("wire: unknown value tag %d", tag)
	}
}

func writeUint8(w io.Writer, b uint8) error {
	return binary.Write(w, binary.LittleEndian, b)
}

func readUint8(r io.Reader) (uint8, error) {
	var b uint8
	err := binary.Read(r, binary.LittleEndian, &b)
	return b, err
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}

func sortedKeys(m map[string]object.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
