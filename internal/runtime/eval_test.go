package runtime

import (
	"context"
	"testing"

	"github.com/frisbee-lang/frisbee/internal/ast"
	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, types *TypeTable) *Context {
	if types == nil {
		types = NewTypeTable()
	}
	rt := NewRuntime(types, nil, nil, "east")
	return NewContext(context.Background(), rt, nil)
}

func TestEvaluateLiterals(t *testing.T) {
	ctx := newTestContext(t, nil)

	v, err := Evaluate(&ast.IntLit{Value: 42}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Int(42), v)

	v, err = Evaluate(&ast.StringLit{Value: "hi"}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Str("hi"), v)

	v, err = Evaluate(&ast.BoolLit{Value: true}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Bool(true), v)

	v, err = Evaluate(&ast.VoidLit{}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Void{}, v)
}

func TestEvaluateIdentUnbound(t *testing.T) {
	ctx := newTestContext(t, nil)
	_, err := Evaluate(&ast.Ident{Name: "x"}, ctx)
	require.ErrorIs(t, err, ErrUnboundName)
}

func TestEvaluateArithmetic(t *testing.T) {
	ctx := newTestContext(t, nil)

	v, err := Evaluate(&ast.BinOp{Op: "+", Left: &ast.IntLit{Value: 2}, Right: &ast.IntLit{Value: 3}}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Int(5), v)

	v, err = Evaluate(&ast.BinOp{Op: "+", Left: &ast.StringLit{Value: "foo"}, Right: &ast.StringLit{Value: "bar"}}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Str("foobar"), v)

	_, err = Evaluate(&ast.BinOp{Op: "/", Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 0}}, ctx)
	require.ErrorIs(t, err, ErrTypeError)

	_, err = Evaluate(&ast.BinOp{Op: "+", Left: &ast.IntLit{Value: 1}, Right: &ast.BoolLit{Value: true}}, ctx)
	require.ErrorIs(t, err, ErrTypeError)
}

func TestEvaluateComparisonAndEquality(t *testing.T) {
	ctx := newTestContext(t, nil)

	v, err := Evaluate(&ast.BinOp{Op: "<", Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 2}}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Bool(true), v)

	v, err = Evaluate(&ast.BinOp{Op: "==", Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 1}}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Bool(true), v)

	v, err = Evaluate(&ast.BinOp{Op: "!=", Left: &ast.IntLit{Value: 1}, Right: &ast.StringLit{Value: "1"}}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Bool(true), v)
}

func TestEvaluateIndexAndBounds(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.Env["arr"] = &object.Array{Elems: []object.Value{object.Int(10), object.Int(20)}}

	v, err := Evaluate(&ast.Index{Array: &ast.Ident{Name: "arr"}, Idx: &ast.IntLit{Value: 1}}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Int(20), v)

	_, err = Evaluate(&ast.Index{Array: &ast.Ident{Name: "arr"}, Idx: &ast.IntLit{Value: 5}}, ctx)
	require.ErrorIs(t, err, ErrBoundsError)
}

func TestEvaluateArrayLength(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.Env["arr"] = &object.Array{Elems: []object.Value{object.Int(1), object.Int(2), object.Int(3)}}

	v, err := Evaluate(&ast.MethodCall{Receiver: &ast.Ident{Name: "arr"}, Method: "length"}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Int(3), v)

	_, err = Evaluate(&ast.MethodCall{Receiver: &ast.Ident{Name: "arr"}, Method: "length", Args: []ast.Expr{&ast.IntLit{Value: 1}}}, ctx)
	require.ErrorIs(t, err, ErrTypeError)

	_, err = Evaluate(&ast.MethodCall{Receiver: &ast.Ident{Name: "arr"}, Method: "nope"}, ctx)
	require.ErrorIs(t, err, ErrMethodNotFound)

	// Array is not a record: field-access syntax (no parens) isn't length's
	// spelling, only method-call syntax is (spec §4.4).
	_, err = Evaluate(&ast.FieldAccess{Receiver: &ast.Ident{Name: "arr"}, Field: "length"}, ctx)
	require.ErrorIs(t, err, ErrTypeError)
}

func TestValuesEqualArrayIsStructural(t *testing.T) {
	a := &object.Array{Elems: []object.Value{object.Int(1), object.Str("x")}}
	b := &object.Array{Elems: []object.Value{object.Int(1), object.Str("x")}}
	c := &object.Array{Elems: []object.Value{object.Int(1), object.Str("y")}}

	require.True(t, valuesEqual(a, b))
	require.False(t, valuesEqual(a, c))
	require.False(t, valuesEqual(a, &object.Array{Elems: []object.Value{object.Int(1)}}))
}

func TestEvaluateFieldAccessOnActiveProxyFails(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.Env["p"] = &object.ActiveProxy{ActorID: "a1", HomeEnv: "east"}

	_, err := Evaluate(&ast.FieldAccess{Receiver: &ast.Ident{Name: "p"}, Field: "x"}, ctx)
	require.ErrorIs(t, err, ErrNotPassive)
}

func geometryPointDecl() *ast.Decl {
	return &ast.Decl{
		Kind:   ast.Passive,
		Module: "geometry",
		Type:   "Point",
		Fields: []string{"x", "y"},
		Methods: map[string]*ast.MethodDecl{
			"sum": {
				Name: "sum",
				Body: []ast.Stmt{
					&ast.Return{Value: &ast.BinOp{
						Op:   "+",
						Left: &ast.FieldAccess{Receiver: &ast.This{}, Field: "x"},
						Right: &ast.FieldAccess{Receiver: &ast.This{}, Field: "y"},
					}},
				},
			},
		},
	}
}

func TestNewAndRunMethod(t *testing.T) {
	types := NewTypeTable()
	require.NoError(t, types.Add(geometryPointDecl()))
	ctx := newTestContext(t, types)

	v, err := Evaluate(&ast.New{Module: "geometry", Type: "Point", Args: []ast.Expr{
		&ast.IntLit{Value: 3}, &ast.IntLit{Value: 4},
	}}, ctx)
	require.NoError(t, err)

	ctx.Env["p"] = v
	result, err := Evaluate(&ast.MethodCall{Receiver: &ast.Ident{Name: "p"}, Method: "sum"}, ctx)
	require.NoError(t, err)
	require.Equal(t, object.Int(7), result)
}

func TestNewUnknownTypeFails(t *testing.T) {
	ctx := newTestContext(t, nil)
	_, err := Evaluate(&ast.New{Module: "geometry", Type: "Point", Args: nil}, ctx)
	require.ErrorIs(t, err, ErrTypeNotFound)
}
