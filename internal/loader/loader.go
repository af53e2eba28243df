package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/frisbee-lang/frisbee/internal/ast"
	"github.com/frisbee-lang/frisbee/internal/runtime"
	"github.com/frisbee-lang/frisbee/internal/wire/sexpr"
)

// Loader recursively loads a program's module graph from a source
// directory, resolving built-ins from a static table and everything else
// from `<module>.frisbee` files (spec.md §4.6 steps 1-2).
type Loader struct {
	dir    string
	types  *runtime.TypeTable
	loaded map[string]*ast.Module
}

// New creates a Loader reading `<module>.frisbee` files from dir.
func New(dir string) *Loader {
	return &Loader{
		dir:    dir,
		types:  runtime.NewTypeTable(),
		loaded: make(map[string]*ast.Module),
	}
}

// Load parses entryModule and its transitive imports, returning the merged
// type table (spec.md's "shared accumulator") and the entry module's own
// AST. Every new/spawn node reachable from any loaded module has had its
// Module field resolved by the time Load returns.
func (l *Loader) Load(entryModule string) (*runtime.TypeTable, *ast.Module, error) {
	mod, err := l.loadModule(entryModule)
	if err != nil {
		return nil, nil, err
	}
	return l.types, mod, nil
}

// Types returns the accumulated type table built so far.
func (l *Loader) Types() *runtime.TypeTable {
	return l.types
}

func (l *Loader) loadModule(name string) (*ast.Module, error) {
	if mod, ok := l.loaded[name]; ok {
		log.Infof("Omitting second appearance of module %s", name)
		return mod, nil
	}

	if isBuiltinModule(name) {
		for _, decl := range builtinModules[name] {
			if err := l.types.Add(decl); err != nil {
				return nil, err
			}
		}
		mod := &ast.Module{Name: name}
		l.loaded[name] = mod
		return mod, nil
	}

	path := filepath.Join(l.dir, name+".frisbee")
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%v)", ErrModuleNotFound, name, err)
	}

	form, err := sexpr.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mod, err := parseModule(form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// Register before recursing into imports: a module that (directly or
	// transitively) imports itself hits the cached-module branch above
	// instead of recursing forever.
	l.loaded[name] = mod
	log.Debugf("Loading module %s from %s", name, path)

	importNames := make([]string, 0, len(mod.Imports))
	for imported := range mod.Imports {
		importNames = append(importNames, imported)
	}
	sort.Strings(importNames)
	for _, imported := range importNames {
		if _, err := l.loadModule(imported); err != nil {
			return nil, err
		}
	}

	typeToModule := make(map[string]string, len(mod.Decls))
	for _, decl := range mod.Decls {
		decl.Module = name
		typeToModule[decl.Type] = name
		if err := l.types.Add(decl); err != nil {
			return nil, err
		}
	}
	// A local declaration shadows an imported name of the same type name
	// (spec.md §4.6 scenario S5): only fill in the import's mapping when no
	// local decl already claimed that type name.
	for imported, typeNames := range mod.Imports {
		for _, t := range typeNames {
			if _, claimed := typeToModule[t]; !claimed {
				typeToModule[t] = imported
			}
		}
	}

	for _, decl := range mod.Decls {
		for _, method := range decl.Methods {
			if err := rewriteStmts(method.Body, typeToModule); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", decl.Type, method.Name, err)
			}
		}
	}

	return mod, nil
}
