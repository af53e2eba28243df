package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/frisbee-lang/frisbee/internal/object"
)

// Envelope is the canonical form of a bus message: a method name, its
// argument values, and an optional reply topic (spec.md §4.4). ReplyTo is
// empty for a fire-and-forget send.
type Envelope struct {
	Method  string
	Args    []object.Value
	ReplyTo string
}

// EncodeEnvelope renders e in the canonical binary form.
func EncodeEnvelope(e Envelope) ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := writeString(buf, e.Method); err != nil {
		return nil, err
	}
	if err := writeString(buf, e.ReplyTo); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(e.Args))); err != nil {
		return nil, err
	}
	for _, a := range e.Args {
		if err := writeValue(buf, a); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeEnvelope parses the canonical binary form produced by
// EncodeEnvelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	r := bytes.NewReader(data)

	method, err := readString(r)
	if err != nil {
		return Envelope{}, fmt.Errorf("wire: envelope method: %w", err)
	}
	replyTo, err := readString(r)
	if err != nil {
		return Envelope{}, fmt.Errorf("wire: envelope reply_to: %w", err)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return Envelope{}, fmt.Errorf("wire: envelope arg count: %w", err)
	}
	args := make([]object.Value, count)
	for i := range args {
		v, err := readValue(r)
		if err != nil {
			return Envelope{}, fmt.Errorf("wire: envelope arg %d: %w", i, err)
		}
		args[i] = v
	}
	if r.Len() != 0 {
		return Envelope{}, fmt.Errorf("wire: %d trailing byte(s) after envelope", r.Len())
	}

	return Envelope{Method: method, Args: args, ReplyTo: replyTo}, nil
}
