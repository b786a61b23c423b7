// Package fault defines the error taxonomy shared by the heap, reader,
// compiler and machine. None of these errors are recoverable within a single
// execution; they halt it and surface from the API boundary.
package fault

import (
	"errors"

	"github.com/joomcode/errorx"
)

var (
	// Namespace holds every error type raised by the machine.
	Namespace = errorx.NewNamespace("secd")

	// OutOfMemory means the free list was empty right after a full
	// collection, or the string store has no room for another name.
	OutOfMemory = Namespace.NewType("out_of_memory")

	// UnboundVariable means a symbol was not bound in any enclosing lexical
	// frame at compile time; SymbolProperty names it.
	UnboundVariable = Namespace.NewType("unbound_variable")

	// MalformedProgram covers unknown opcodes, control running out before
	// STOP and special forms with the wrong shape.
	MalformedProgram = Namespace.NewType("malformed_program")

	// Arithmetic covers division or remainder by zero and non-numeric
	// operands to numeric instructions.
	Arithmetic = Namespace.NewType("arithmetic")

	// MalformedInput is raised by the reader for unparseable input;
	// LocationProperty says where.
	MalformedInput = Namespace.NewType("malformed_input")

	// UnexpectedEOF is the MalformedInput raised when input ends inside an
	// unfinished expression.
	UnexpectedEOF = MalformedInput.NewSubtype("unexpected_eof")
)

var (
	SymbolProperty   = errorx.RegisterPrintableProperty("symbol")
	OpProperty       = errorx.RegisterPrintableProperty("op")
	LocationProperty = errorx.RegisterPrintableProperty("location")
	ExprProperty     = errorx.RegisterPrintableProperty("expr")
)

// Is returns true if err, or any error it wraps, is an errorx error of type t
// (or one of its subtypes).
func Is(err error, t *errorx.Type) bool {
	var ex *errorx.Error
	return errors.As(err, &ex) && ex.IsOfType(t)
}

// Property extracts a property value from the first errorx error in err's
// chain.
func Property(err error, key errorx.Property) (interface{}, bool) {
	var ex *errorx.Error
	if !errors.As(err, &ex) {
		return nil, false
	}
	return ex.Property(key)
}

// Message returns err's message without its type name and properties, or
// err.Error() for non-errorx errors.
func Message(err error) string {
	var ex *errorx.Error
	if errors.As(err, &ex) {
		return ex.Message()
	}
	return err.Error()
}
