package secd

import (
	"context"
	"strings"

	"github.com/jcorbin/gosecd/internal/fault"
	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/panicerr"
	"github.com/jcorbin/gosecd/internal/sexpr"
)

// Machine is an SECD register machine: S is the value stack, E the
// environment (a list of frames, each a list of values), C the code being run
// and D the dump of saved registers. All four are heap lists, and stay rooted
// in the heap for as long as the machine is open.
type Machine struct {
	h          *heap.Heap
	s, e, c, d heap.Cell

	steps       int
	logfn       func(mess string, args ...interface{})
	traceDepth  int
	removeRoots func()
}

// New creates a machine running on h.
func New(h *heap.Heap, opts ...Option) *Machine {
	m := &Machine{h: h}
	defaultOptions.apply(m)
	Options(opts...).apply(m)
	m.removeRoots = h.AddRoots(m)
	return m
}

// Close unregisters the machine's registers as heap roots.
func (m *Machine) Close() {
	if m.removeRoots != nil {
		m.removeRoots()
		m.removeRoots = nil
	}
	m.s, m.e, m.c, m.d = heap.Nil, heap.Nil, heap.Nil, heap.Nil
}

// Roots marks the machine registers.
func (m *Machine) Roots(mark func(heap.Cell)) {
	mark(m.s)
	mark(m.e)
	mark(m.c)
	mark(m.d)
}

// Steps returns how many instructions the last Execute ran.
func (m *Machine) Steps() int { return m.steps }

// Execute runs code fn with args as its argument list, until it reaches STOP,
// and returns the value left on top of the stack. That value remains reachable
// until the next Execute.
func (m *Machine) Execute(ctx context.Context, fn, args heap.Cell) (heap.Cell, error) {
	m.steps = 0
	m.s, m.e, m.c, m.d = args, heap.Nil, fn, heap.Nil
	err := panicerr.Recover("secd", func() error {
		m.s = m.h.Cons(m.s, heap.Nil)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			if m.step() {
				return nil
			}
		}
	})
	if err != nil {
		return heap.Nil, err
	}
	return m.h.Car(m.s), nil
}

func (m *Machine) step() (stop bool) {
	h := m.h
	release := h.Hold()
	defer release()

	if !h.IsPair(m.c) {
		m.malformed("control exhausted without STOP")
	}
	opc := h.Car(m.c)
	if !h.IsNumber(opc) {
		m.malformed("non-numeric instruction %v", sexpr.String(h, opc))
	}
	op := Op(h.Value(opc))
	if m.logfn != nil {
		m.trace(op)
	}
	m.steps++

	s, e, c, d := m.s, m.e, m.c, m.d
	switch op {
	case LD:
		addr := h.Car(h.Cdr(c))
		if !h.IsPair(addr) || !h.IsNumber(h.Car(addr)) || !h.IsNumber(h.Cdr(addr)) {
			m.malformed("invalid LD address %v", sexpr.String(h, addr))
		}
		frame := e
		for i := h.Value(h.Car(addr)); i > 0 && h.IsPair(frame); i-- {
			frame = h.Cdr(frame)
		}
		frame = h.Car(frame)
		for i := h.Value(h.Cdr(addr)); i > 0 && h.IsPair(frame); i-- {
			frame = h.Cdr(frame)
		}
		m.s = h.Cons(h.Car(frame), s)
		m.c = h.Cdr(h.Cdr(c))

	case LDC:
		m.s = h.Cons(h.Car(h.Cdr(c)), s)
		m.c = h.Cdr(h.Cdr(c))

	case LDF:
		m.s = h.Cons(h.Cons(h.Car(h.Cdr(c)), e), s)
		m.c = h.Cdr(h.Cdr(c))

	case AP:
		fn, args := h.Car(s), h.Car(h.Cdr(s))
		if !h.IsPair(fn) {
			m.malformed("cannot apply %v", sexpr.String(h, fn))
		}
		m.d = h.Cons(h.Cdr(h.Cdr(s)), h.Cons(e, h.Cons(h.Cdr(c), d)))
		m.e = h.Cons(args, h.Cdr(fn))
		m.c = h.Car(fn)
		m.s = heap.Nil

	case RTN:
		m.s = h.Cons(h.Car(s), h.Car(d))
		m.e = h.Car(h.Cdr(d))
		m.c = h.Car(h.Cdr(h.Cdr(d)))
		m.d = h.Cdr(h.Cdr(h.Cdr(d)))

	case DUM:
		m.e = h.Cons(heap.Nil, e)
		m.c = h.Cdr(c)

	case RAP:
		fn, args := h.Car(s), h.Car(h.Cdr(s))
		if !h.IsPair(e) || h.Car(e) != heap.Nil {
			m.malformed("RAP without a DUM frame")
		}
		if !h.IsPair(fn) || !h.IsPair(h.Cdr(fn)) {
			m.malformed("cannot apply %v recursively", sexpr.String(h, fn))
		}
		m.d = h.Cons(h.Cdr(h.Cdr(s)), h.Cons(h.Cdr(e), h.Cons(h.Cdr(c), d)))
		m.e = h.Cdr(fn)
		h.SetCar(m.e, args)
		m.c = h.Car(fn)
		m.s = heap.Nil

	case SEL:
		branches := h.Cdr(c)
		m.d = h.Cons(h.Cdr(h.Cdr(branches)), d)
		if h.IsTrue(h.Car(s)) {
			m.c = h.Car(branches)
		} else {
			m.c = h.Car(h.Cdr(branches))
		}
		m.s = h.Cdr(s)

	case JOIN:
		m.c = h.Car(d)
		m.d = h.Cdr(d)

	case CAR:
		m.s = h.Cons(h.Car(h.Car(s)), h.Cdr(s))
		m.c = h.Cdr(c)

	case CDR:
		m.s = h.Cons(h.Cdr(h.Car(s)), h.Cdr(s))
		m.c = h.Cdr(c)

	case ATOM:
		m.s = h.Cons(h.Bool(h.IsAtom(h.Car(s))), h.Cdr(s))
		m.c = h.Cdr(c)

	case CONS:
		m.s = h.Cons(h.Cons(h.Car(s), h.Car(h.Cdr(s))), h.Cdr(h.Cdr(s)))
		m.c = h.Cdr(c)

	case EQ:
		a, b := h.Car(h.Cdr(s)), h.Car(s)
		m.s = h.Cons(h.Bool(m.eq(a, b)), h.Cdr(h.Cdr(s)))
		m.c = h.Cdr(c)

	case ADD, SUB, MUL, DIV, REM, LEQ:
		a, b := m.number(op, h.Car(h.Cdr(s))), m.number(op, h.Car(s))
		var r heap.Cell
		switch op {
		case ADD:
			r = h.Number(a + b)
		case SUB:
			r = h.Number(a - b)
		case MUL:
			r = h.Number(a * b)
		case DIV:
			m.nonzero(op, b)
			r = h.Number(a / b)
		case REM:
			m.nonzero(op, b)
			r = h.Number(a % b)
		case LEQ:
			r = h.Bool(a <= b)
		}
		m.s = h.Cons(r, h.Cdr(h.Cdr(s)))
		m.c = h.Cdr(c)

	case STOP:
		return true

	default:
		panicerr.Halt(fault.MalformedProgram.
			New("unknown instruction %v", int64(op)).
			WithProperty(fault.OpProperty, op.String()))
	}
	return false
}

// eq is true for symbols or numbers with equal values; pairs are never eq,
// not even to themselves.
func (m *Machine) eq(a, b heap.Cell) bool {
	h := m.h
	switch {
	case h.IsSymbol(a) && h.IsSymbol(b):
		return h.SameSymbol(a, b)
	case h.IsNumber(a) && h.IsNumber(b):
		return h.Value(a) == h.Value(b)
	}
	return false
}

func (m *Machine) number(op Op, c heap.Cell) int64 {
	if !m.h.IsNumber(c) {
		panicerr.Halt(fault.Arithmetic.
			New("%v of non-number %v", op, sexpr.String(m.h, c)).
			WithProperty(fault.OpProperty, op.String()))
	}
	return m.h.Value(c)
}

func (m *Machine) nonzero(op Op, n int64) {
	if n == 0 {
		panicerr.Halt(fault.Arithmetic.
			New("%v by zero", op).
			WithProperty(fault.OpProperty, op.String()))
	}
}

func (m *Machine) malformed(mess string, args ...interface{}) {
	panicerr.Halt(fault.MalformedProgram.New(mess, args...))
}

func (m *Machine) trace(op Op) {
	pr := sexpr.Printer{MaxDepth: m.traceDepth}
	var c strings.Builder
	codeWriter{MaxDepth: m.traceDepth}.write(&c, m.h, m.c)
	m.logfn("%v s=%v e=%v c=%v d=%v",
		op,
		pr.String(m.h, m.s),
		pr.String(m.h, m.e),
		c.String(),
		pr.String(m.h, m.d),
	)
}
