package runtime

import (
	"fmt"

	"github.com/frisbee-lang/frisbee/internal/ast"
)

// TypeTable is the loader's output: a two-level module -> typename ->
// declaration table (spec §3, §4.6). It never holds two declarations under
// the same (module, typename) pair — enforced by Add, not just assumed
// (spec §8 invariant 5).
type TypeTable struct {
	modules map[string]map[string]*ast.Decl
}

// NewTypeTable returns an empty table.
func NewTypeTable() *TypeTable {
	return &TypeTable{modules: make(map[string]map[string]*ast.Decl)}
}

// Add registers decl under its own Module/Type. It returns an error if that
// pair is already registered with a different declaration.
func (t *TypeTable) Add(decl *ast.Decl) error {
	byType, ok := t.modules[decl.Module]
	if !ok {
		byType = make(map[string]*ast.Decl)
		t.modules[decl.Module] = byType
	}

	if existing, ok := byType[decl.Type]; ok && existing != decl {
		return fmt.Errorf("%w: %s.%s already declared",
			ErrTypeError, decl.Module, decl.Type)
	}

	byType[decl.Type] = decl
	return nil
}

// Lookup resolves a typename within a module, reporting ok=false if the
// module or type is unknown.
func (t *TypeTable) Lookup(module, typ string) (*ast.Decl, bool) {
	byType, ok := t.modules[module]
	if !ok {
		return nil, false
	}
	decl, ok := byType[typ]
	return decl, ok
}

// Modules returns the set of module names currently registered.
func (t *TypeTable) Modules() []string {
	names := make([]string, 0, len(t.modules))
	for name := range t.modules {
		names = append(names, name)
	}
	return names
}
