package sexpr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAtoms(t *testing.T) {
	n, err := Parse(`42`)
	require.NoError(t, err)
	require.Equal(t, KindInt, n.Kind)
	require.Equal(t, int64(42), n.Int)

	n, err = Parse(`foo-bar`)
	require.NoError(t, err)
	require.Equal(t, KindSymbol, n.Kind)
	require.Equal(t, "foo-bar", n.Symbol)

	n, err = Parse(`"hello world"`)
	require.NoError(t, err)
	require.Equal(t, KindString, n.Kind)
	require.Equal(t, "hello world", n.String)
}

func TestParseList(t *testing.T) {
	n, err := Parse(`(decl passive geometry.Point (x y) (method area () (return 0)))`)
	require.NoError(t, err)
	require.Equal(t, KindList, n.Kind)
	require.Len(t, n.List, 5)
	require.Equal(t, "decl", n.List[0].Symbol)
	require.Equal(t, "passive", n.List[1].Symbol)
}

func TestParseNestedAndComments(t *testing.T) {
	src := `
; a comment
(module main
  (import geometry (Point)))
`
	n, err := Parse(src)
	require.NoError(t, err)
	require.Equal(t, "module", n.List[0].Symbol)
	imp := n.List[2]
	require.Equal(t, "import", imp.List[0].Symbol)
}

func TestParseAllMultipleForms(t *testing.T) {
	forms, err := ParseAll(`(a 1) (b 2) (c 3)`)
	require.NoError(t, err)
	require.Len(t, forms, 3)
	require.Equal(t, "a", forms[0].List[0].Symbol)
	require.Equal(t, int64(3), forms[2].List[1].Int)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(`(unterminated`)
	require.Error(t, err)

	_, err = Parse(`"unterminated string`)
	require.Error(t, err)

	_, err = Parse(`(a) trailing`)
	require.Error(t, err)
}
