package runtime

import (
	"fmt"

	"github.com/frisbee-lang/frisbee/internal/ast"
	"github.com/frisbee-lang/frisbee/internal/object"
)

// Instantiate builds the field map for a fresh instance of decl by zipping
// its declared fields against constructor args positionally (spec §3: a
// declaration's field list doubles as its constructor signature). It
// returns ErrTypeError if the arities don't match.
func Instantiate(decl *ast.Decl, args []object.Value) (map[string]object.Value, error) {
	if len(args) != len(decl.Fields) {
		return nil, fmt.Errorf("%w: %s.%s expects %d constructor argument(s), got %d",
			ErrTypeError, decl.Module, decl.Type, len(decl.Fields), len(args))
	}

	fields := make(map[string]object.Value, len(decl.Fields))
	for i, name := range decl.Fields {
		fields[name] = args[i]
	}
	return fields, nil
}

// CreatePassive resolves Module.Type in types and builds a new passive
// instance from args. It fails with ErrTypeNotFound if the type isn't
// declared, or ErrNotPassive if it names an active declaration.
func CreatePassive(types *TypeTable, module, typ string, args []object.Value) (*object.PassiveInstance, error) {
	decl, ok := types.Lookup(module, typ)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrTypeNotFound, module, typ)
	}
	if decl.Kind != ast.Passive {
		return nil, fmt.Errorf("%w: %s.%s is active, use spawn", ErrNotPassive, module, typ)
	}

	fields, err := Instantiate(decl, args)
	if err != nil {
		return nil, err
	}
	return object.NewPassiveInstance(module, typ, fields), nil
}

// PrepareActive resolves Module.Type in types and builds the in-process
// field state for a new active instance, ahead of the actor host minting
// it an actor id and starting its receive loop (spec §4.5). It fails with
// ErrTypeNotFound if the type isn't declared, or ErrTypeError if it names
// a passive declaration.
func PrepareActive(types *TypeTable, module, typ string, args []object.Value) (*object.ActiveInstance, error) {
	decl, ok := types.Lookup(module, typ)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrTypeNotFound, module, typ)
	}
	if decl.Kind != ast.Active {
		return nil, fmt.Errorf("%w: %s.%s is passive, use new", ErrTypeError, module, typ)
	}

	fields, err := Instantiate(decl, args)
	if err != nil {
		return nil, err
	}
	return object.NewActiveInstance(module, typ, fields), nil
}

// LookupMethod resolves a method on decl, reporting ok=false if it doesn't
// exist.
func LookupMethod(decl *ast.Decl, name string) (*ast.MethodDecl, bool) {
	m, ok := decl.Methods[name]
	return m, ok
}

// DeclOf resolves the declaration backing a runtime value: a
// *object.PassiveInstance or *object.ActiveInstance. It returns ok=false
// for any other kind of value (e.g. a proxy, which has no local decl).
func DeclOf(types *TypeTable, v object.Value) (*ast.Decl, bool) {
	switch x := v.(type) {
	case *object.PassiveInstance:
		return types.Lookup(x.Module, x.Type)
	case *object.ActiveInstance:
		return types.Lookup(x.Module, x.Type)
	default:
		return nil, false
	}
}
