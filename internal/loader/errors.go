package loader

import "errors"

var (
	// ErrModuleNotFound is returned when an imported module name is
	// neither a built-in nor a `<name>.frisbee` file in the program's
	// source directory.
	ErrModuleNotFound = errors.New("loader: module not found")

	// ErrTypeNotImported is returned when a new/spawn expression names a
	// type that is neither declared locally nor imported (spec.md §4.6
	// scope rewrite).
	ErrTypeNotImported = errors.New("loader: type not imported")

	// ErrParse is returned for a malformed s-expression form: wrong arity,
	// wrong node kind, or an unrecognized form head.
	ErrParse = errors.New("loader: parse error")
)
