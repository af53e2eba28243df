package runtime

import (
	"testing"

	"github.com/frisbee-lang/frisbee/internal/ast"
	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/stretchr/testify/require"
)

func accountDecl() *ast.Decl {
	return &ast.Decl{
		Kind:   ast.Passive,
		Module: "bank",
		Type:   "Account",
		Fields: []string{"balance"},
		Methods: map[string]*ast.MethodDecl{
			"deposit": {
				Name:   "deposit",
				Params: []ast.Param{{Name: "amount"}},
				Body: []ast.Stmt{
					&ast.FieldAssign{
						Receiver: &ast.This{},
						Field:    "balance",
						Value: &ast.BinOp{
							Op:    "+",
							Left:  &ast.FieldAccess{Receiver: &ast.This{}, Field: "balance"},
							Right: &ast.Ident{Name: "amount"},
						},
					},
					&ast.Return{Value: &ast.FieldAccess{Receiver: &ast.This{}, Field: "balance"}},
				},
			},
			"noop": {Name: "noop"},
		},
	}
}

func TestRunMethodDeposit(t *testing.T) {
	types := NewTypeTable()
	require.NoError(t, types.Add(accountDecl()))
	ctx := newTestContext(t, types)

	acct, err := CreatePassive(types, "bank", "Account", []object.Value{object.Int(100)})
	require.NoError(t, err)

	result, err := RunMethod(ctx, acct, "deposit", []object.Value{object.Int(25)})
	require.NoError(t, err)
	require.Equal(t, object.Int(125), result)
	require.Equal(t, object.Int(125), acct.Fields["balance"])
}

func TestRunMethodVoidReturn(t *testing.T) {
	types := NewTypeTable()
	require.NoError(t, types.Add(accountDecl()))
	ctx := newTestContext(t, types)

	acct, err := CreatePassive(types, "bank", "Account", []object.Value{object.Int(0)})
	require.NoError(t, err)

	result, err := RunMethod(ctx, acct, "noop", nil)
	require.NoError(t, err)
	require.Equal(t, object.Void{}, result)
}

func TestRunMethodArityMismatch(t *testing.T) {
	types := NewTypeTable()
	require.NoError(t, types.Add(accountDecl()))
	ctx := newTestContext(t, types)

	acct, err := CreatePassive(types, "bank", "Account", []object.Value{object.Int(0)})
	require.NoError(t, err)

	_, err = RunMethod(ctx, acct, "deposit", nil)
	require.ErrorIs(t, err, ErrTypeError)
}

func TestRunMethodNotFound(t *testing.T) {
	types := NewTypeTable()
	require.NoError(t, types.Add(accountDecl()))
	ctx := newTestContext(t, types)

	acct, err := CreatePassive(types, "bank", "Account", []object.Value{object.Int(0)})
	require.NoError(t, err)

	_, err = RunMethod(ctx, acct, "withdraw", nil)
	require.ErrorIs(t, err, ErrMethodNotFound)
}

func TestCreatePassiveArityMismatch(t *testing.T) {
	types := NewTypeTable()
	require.NoError(t, types.Add(accountDecl()))

	_, err := CreatePassive(types, "bank", "Account", nil)
	require.ErrorIs(t, err, ErrTypeError)
}

func TestTypeTableRejectsDuplicateDecl(t *testing.T) {
	types := NewTypeTable()
	require.NoError(t, types.Add(accountDecl()))
	err := types.Add(accountDecl())
	require.ErrorIs(t, err, ErrTypeError)
}
