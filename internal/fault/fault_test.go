package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/gosecd/internal/fault"
)

func TestIs(t *testing.T) {
	eof := fault.UnexpectedEOF.New("unterminated list")
	assert.True(t, fault.Is(eof, fault.UnexpectedEOF))
	assert.True(t, fault.Is(eof, fault.MalformedInput), "subtype must match its parent")
	assert.False(t, fault.Is(eof, fault.OutOfMemory))

	wrapped := fmt.Errorf("reading stdin: %w", eof)
	assert.True(t, fault.Is(wrapped, fault.MalformedInput), "must see through std wrapping")

	assert.False(t, fault.Is(errors.New("plain"), fault.MalformedInput))
	assert.False(t, fault.Is(nil, fault.MalformedInput))
}

func TestProperty(t *testing.T) {
	err := fault.UnboundVariable.New("unbound variable").WithProperty(fault.SymbolProperty, "x")
	sym, ok := fault.Property(fmt.Errorf("compile: %w", err), fault.SymbolProperty)
	assert.True(t, ok)
	assert.Equal(t, "x", sym)

	_, ok = fault.Property(err, fault.OpProperty)
	assert.False(t, ok)

	_, ok = fault.Property(errors.New("plain"), fault.SymbolProperty)
	assert.False(t, ok)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "division by zero", fault.Message(fault.Arithmetic.New("division by zero")))
	assert.Equal(t, "plain", fault.Message(errors.New("plain")))
}
