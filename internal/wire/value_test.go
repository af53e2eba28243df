package wire

import (
	"testing"

	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeDecodeValuePrimitives(t *testing.T) {
	cases := []object.Value{
		object.Int(42),
		object.Int(-7),
		object.Str("hello frisbee"),
		object.Bool(true),
		object.Bool(false),
		object.Void{},
		&object.Array{Elems: []object.Value{object.Int(1), object.Str("two"), object.Bool(false)}},
		object.NewPassiveInstance("geometry", "Point", map[string]object.Value{
			"x": object.Int(1),
			"y": object.Int(2),
		}),
		&object.ActiveProxy{ActorID: "actor-123", HomeEnv: "east"},
	}

	for _, v := range cases {
		data, err := EncodeValue(v)
		require.NoError(t, err)

		got, err := DecodeValue(data)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

// TestEncodeValueRoundTripProperty checks spec.md §8.6's invariant,
// Decode(Encode(v)) == v, across randomly generated values.
func TestEncodeValueRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := drawValue(t, 3)

		data, err := EncodeValue(v)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}

		got, err := DecodeValue(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		requireValueEqual(t, v, got)
	})
}

func drawValue(t *rapid.T, depth int) object.Value {
	if depth <= 0 {
		return drawScalar(t)
	}

	kind := rapid.IntRange(0, 4).Draw(t, "kind")
	switch kind {
	case 0, 1, 2:
		return drawScalar(t)
	case 3:
		n := rapid.IntRange(0, 4).Draw(t, "arrayLen")
		elems := make([]object.Value, n)
		for i := range elems {
			elems[i] = drawValue(t, depth-1)
		}
		return &object.Array{Elems: elems}
	default:
		n := rapid.IntRange(0, 3).Draw(t, "fieldCount")
		fields := make(map[string]object.Value, n)
		for i := 0; i < n; i++ {
			name := rapid.StringMatching(`[a-z][a-z0-9]{0,5}`).Draw(t, "fieldName")
			fields[name] = drawValue(t, depth-1)
		}
		return object.NewPassiveInstance(
			rapid.StringMatching(`[A-Z][a-z]{0,5}`).Draw(t, "module"),
			rapid.StringMatching(`[A-Z][a-z]{0,5}`).Draw(t, "type"),
			fields,
		)
	}
}

func drawScalar(t *rapid.T) object.Value {
	switch rapid.IntRange(0, 3).Draw(t, "scalarKind") {
	case 0:
		return object.Int(rapid.Int64().Draw(t, "int"))
	case 1:
		return object.Str(rapid.String().Draw(t, "str"))
	case 2:
		return object.Bool(rapid.Bool().Draw(t, "bool"))
	default:
		return object.Void{}
	}
}

// requireValueEqual compares structurally, since Array/PassiveInstance are
// pointers and require.Equal already dereferences them field-wise via
// ObjectsAreEqual's reflect.DeepEqual.
func requireValueEqual(t *rapid.T, want, got object.Value) {
	require.Equal(t, want, got)
}
