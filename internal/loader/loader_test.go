package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/frisbee-lang/frisbee/internal/ast"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".frisbee"), []byte(src), 0o644))
}

func TestLoadResolvesImportsAndScopeRewrite(t *testing.T) {
	dir := t.TempDir()

	writeModule(t, dir, "geometry", `
(module geometry
  (decl passive Point (x y)
    (method sum ()
      (return (+ (field this x) (field this y))))))
`)

	writeModule(t, dir, "main", `
(module main
  (import geometry Point)
  (import sockets TCPServer)
  (decl active Main ()
    (method run ()
      (assign p (new Point 1 2))
      (assign srv (spawn TCPServer 9000))
      (return void))))
`)

	l := New(dir)
	types, mod, err := l.Load("main")
	require.NoError(t, err)
	require.Equal(t, "main", mod.Name)

	_, ok := types.Lookup("geometry", "Point")
	require.True(t, ok)
	_, ok = types.Lookup("sockets", "TCPServer")
	require.True(t, ok)

	run := mod.Decls[0].Methods["run"]
	newStmt := run.Body[0].(*ast.Assign)
	newExpr := newStmt.Value.(*ast.New)
	require.Equal(t, "geometry", newExpr.Module)

	spawnStmt := run.Body[1].(*ast.Assign)
	spawnExpr := spawnStmt.Value.(*ast.Spawn)
	require.Equal(t, "sockets", spawnExpr.Module)
}

func TestLoadUnresolvedTypeFails(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "main", `
(module main
  (decl active Main ()
    (method run ()
      (assign p (new Point 1 2))
      (return void))))
`)
	l := New(dir)
	_, _, err := l.Load("main")
	require.ErrorIs(t, err, ErrTypeNotImported)
}

func TestLoadMissingModuleFails(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "main", `
(module main
  (import nope Thing)
  (decl active Main ()
    (method run () (return void))))
`)
	l := New(dir)
	_, _, err := l.Load("main")
	require.ErrorIs(t, err, ErrModuleNotFound)
}

func TestLoadCyclicImportTerminates(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a", `
(module a
  (import b B)
  (decl passive A (x)))
`)
	writeModule(t, dir, "b", `
(module b
  (import a A)
  (decl passive B (y)))
`)

	l := New(dir)
	done := make(chan struct{})
	go func() {
		_, _, err := l.Load("a")
		require.NoError(t, err)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cyclic import did not terminate")
	}

	_, ok := l.Types().Lookup("a", "A")
	require.True(t, ok)
	_, ok = l.Types().Lookup("b", "B")
	require.True(t, ok)
}

func TestLoadLocalDeclShadowsSameNameImport(t *testing.T) {
	dir := t.TempDir()

	writeModule(t, dir, "geometry", `
(module geometry
  (decl passive Point (x y)))
`)

	writeModule(t, dir, "main", `
(module main
  (import geometry Point)
  (decl passive Point (x)
    (method describe ()
      (return void)))
  (decl active Main ()
    (method run ()
      (assign p (new Point 1))
      (return void))))
`)

	l := New(dir)
	_, mod, err := l.Load("main")
	require.NoError(t, err)

	// main.Point must win over geometry.Point (spec.md §4.6 scenario S5:
	// imported names shadowed by local names of the same type name).
	run := mod.Decls[1].Methods["run"]
	newStmt := run.Body[0].(*ast.Assign)
	newExpr := newStmt.Value.(*ast.New)
	require.Equal(t, "main", newExpr.Module)
}

func TestLoadSecondAppearanceIsCached(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "shared", `
(module shared
  (decl passive Shared (v)))
`)
	writeModule(t, dir, "left", `
(module left
  (import shared Shared)
  (decl passive Left (v)))
`)
	writeModule(t, dir, "main", `
(module main
  (import shared Shared)
  (import left Left)
  (decl active Main ()
    (method run () (return void))))
`)

	l := New(dir)
	_, mod, err := l.Load("main")
	require.NoError(t, err)
	require.Equal(t, "main", mod.Name)

	sharedDecl, ok := l.Types().Lookup("shared", "Shared")
	require.True(t, ok)
	require.Same(t, sharedDecl, l.loaded["shared"].Decls[0])
}
