package secd

import (
	"strings"

	"github.com/jcorbin/gosecd/internal/fault"
	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/panicerr"
	"github.com/jcorbin/gosecd/internal/sexpr"
)

// Compile translates expr into code that evaluates it and then stops, leaving
// its value on top of the stack.
//
// The returned code is held by the caller's heap hold, if one is open.
func Compile(h *heap.Heap, expr heap.Cell) (heap.Cell, error) {
	return compile(h, expr, STOP)
}

// CompileProgram translates expr, which should evaluate to a function, into
// code that applies it to the argument list an execution starts with.
func CompileProgram(h *heap.Heap, expr heap.Cell) (heap.Cell, error) {
	return compile(h, expr, AP, STOP)
}

func compile(h *heap.Heap, expr heap.Cell, then ...Op) (code heap.Cell, err error) {
	release := h.Hold()
	defer func() { release(code) }()
	h.Keep(expr)

	code = heap.Nil
	err = panicerr.Recover("compile", func() error {
		cc := compiler{h: h}
		k := heap.Nil
		for i := len(then) - 1; i >= 0; i-- {
			k = cc.op(then[i], k)
		}
		code = cc.comp(expr, nil, k)
		return nil
	})
	if err != nil {
		code = heap.Nil
	}
	return code, err
}

// compiler builds code tail first: every method takes the continuation code
// c that must run after the part it compiles, and returns the code list that
// runs that part and then c.
//
// Every cell allocated during compilation is held by compile's hold, so
// partial results need no further protection.
type compiler struct {
	h *heap.Heap
}

// frames lists the parameter lists of enclosing functions, innermost last.
type frames []heap.Cell

func (fs frames) with(params heap.Cell) frames {
	return append(fs[:len(fs):len(fs)], params)
}

func (cc compiler) op(op Op, c heap.Cell) heap.Cell {
	return cc.h.Cons(cc.h.Number(int64(op)), c)
}

func (cc compiler) op1(op Op, arg, c heap.Cell) heap.Cell {
	return cc.op(op, cc.h.Cons(arg, c))
}

func (cc compiler) comp(e heap.Cell, fs frames, c heap.Cell) heap.Cell {
	h := cc.h
	switch h.Kind(e) {
	case heap.Number:
		return cc.op1(LDC, e, c)
	case heap.Symbol:
		return cc.variable(e, fs, c)
	case heap.Pair:
	default:
		panic("compiling free cell")
	}

	head, args := h.Car(e), h.Cdr(e)
	if h.IsSymbol(head) {
		switch form := strings.ToUpper(h.Name(head)); form {
		case "QUOTE":
			x := cc.args(form, e, 1, 1)
			return cc.op1(LDC, x[0], c)

		case "ADD", "SUB", "MUL", "DIV", "REM", "EQ", "LEQ":
			op, _ := ParseOp(form)
			x := cc.args(form, e, 2, 2)
			return cc.comp(x[0], fs, cc.comp(x[1], fs, cc.op(op, c)))

		case "CAR", "CDR", "ATOM":
			op, _ := ParseOp(form)
			x := cc.args(form, e, 1, 1)
			return cc.comp(x[0], fs, cc.op(op, c))

		case "CONS":
			x := cc.args(form, e, 2, 2)
			return cc.comp(x[1], fs, cc.comp(x[0], fs, cc.op(CONS, c)))

		case "IF":
			x := cc.args(form, e, 2, 3)
			alt := heap.Nil
			if len(x) > 2 {
				alt = x[2]
			}
			join := cc.op(JOIN, heap.Nil)
			then := cc.comp(x[1], fs, join)
			els := cc.comp(alt, fs, join)
			return cc.comp(x[0], fs, cc.op(SEL, h.Cons(then, h.Cons(els, c))))

		case "LAMBDA":
			x := cc.args(form, e, 2, 2)
			params := cc.params(form, e, x[0])
			body := cc.comp(x[1], fs.with(params), cc.op(RTN, heap.Nil))
			return cc.op1(LDF, body, c)

		case "LET":
			vars, exprs, body := cc.bindings(form, e)
			fn := cc.comp(body, fs.with(vars), cc.op(RTN, heap.Nil))
			return cc.complis(exprs, fs, cc.op1(LDF, fn, cc.op(AP, c)))

		case "LETREC":
			vars, exprs, body := cc.bindings(form, e)
			inner := fs.with(vars)
			fn := cc.comp(body, inner, cc.op(RTN, heap.Nil))
			return cc.op(DUM, cc.complis(exprs, inner, cc.op1(LDF, fn, cc.op(RAP, c))))

		case "APPLY":
			x := cc.args(form, e, 1, -1)
			return cc.complis(x[1:], fs, cc.comp(x[0], fs, cc.op(AP, c)))
		}
	}

	x, ok := cc.list(args)
	if !ok {
		cc.malformed(e, "improper argument list")
	}
	return cc.complis(x, fs, cc.comp(head, fs, cc.op(AP, c)))
}

// complis compiles code that builds a list of the values of exprs.
func (cc compiler) complis(exprs []heap.Cell, fs frames, c heap.Cell) heap.Cell {
	for _, e := range exprs {
		c = cc.comp(e, fs, cc.op(CONS, c))
	}
	return cc.op1(LDC, heap.Nil, c)
}

func (cc compiler) variable(sym heap.Cell, fs frames, c heap.Cell) heap.Cell {
	h := cc.h
	if depth, slot, ok := cc.location(sym, fs); ok {
		addr := h.Cons(h.Number(int64(depth)), h.Number(int64(slot)))
		return cc.op1(LD, addr, c)
	}
	for _, k := range []heap.Cell{heap.Nil, heap.T, heap.F} {
		if h.SameSymbol(sym, k) {
			return cc.op1(LDC, k, c)
		}
	}
	name := h.Name(sym)
	panicerr.Halt(fault.UnboundVariable.
		New("unbound variable %v", name).
		WithProperty(fault.SymbolProperty, name))
	return heap.Nil
}

// location finds the innermost binding of sym: how many frames out it is, and
// its position within that frame.
func (cc compiler) location(sym heap.Cell, fs frames) (depth, slot int, ok bool) {
	h := cc.h
	for depth = 0; depth < len(fs); depth++ {
		slot = 0
		for p := fs[len(fs)-1-depth]; h.IsPair(p); p = h.Cdr(p) {
			if h.SameSymbol(h.Car(p), sym) {
				return depth, slot, true
			}
			slot++
		}
	}
	return 0, 0, false
}

// args returns the arguments of form e, checking their count; max < 0 means
// no upper bound.
func (cc compiler) args(form string, e heap.Cell, min, max int) []heap.Cell {
	x, ok := cc.list(cc.h.Cdr(e))
	if !ok || len(x) < min || (max >= 0 && len(x) > max) {
		switch {
		case max < 0:
			cc.malformed(e, "%v takes at least %v argument(s)", form, min)
		case min == max:
			cc.malformed(e, "%v takes %v argument(s)", form, min)
		default:
			cc.malformed(e, "%v takes %v to %v arguments", form, min, max)
		}
	}
	return x
}

func (cc compiler) params(form string, e, params heap.Cell) heap.Cell {
	x, ok := cc.list(params)
	if !ok {
		cc.malformed(e, "%v parameters must be a list", form)
	}
	for _, p := range x {
		if !cc.h.IsSymbol(p) {
			cc.malformed(e, "%v parameter %v is not a symbol", form, sexpr.String(cc.h, p))
		}
	}
	return params
}

// bindings destructures (LET ((x e) ...) body) and (LET x e body), returning
// the bound variable list, their value expressions, and the body.
func (cc compiler) bindings(form string, e heap.Cell) (vars heap.Cell, exprs []heap.Cell, body heap.Cell) {
	h := cc.h
	x, ok := cc.list(h.Cdr(e))
	if ok && len(x) == 3 && h.IsSymbol(x[0]) && !h.SameSymbol(x[0], heap.Nil) {
		return h.List(x[0]), x[1:2], x[2]
	}
	if !ok || len(x) != 2 {
		cc.malformed(e, "%v takes a binding list and a body", form)
	}

	bs, ok := cc.list(x[0])
	if !ok {
		cc.malformed(e, "%v bindings must be a list", form)
	}
	names := make([]heap.Cell, len(bs))
	exprs = make([]heap.Cell, len(bs))
	for i, b := range bs {
		bx, ok := cc.list(b)
		if !ok || len(bx) != 2 || !h.IsSymbol(bx[0]) {
			cc.malformed(e, "%v binding %v is not a (name expr) pair", form, sexpr.String(h, b))
		}
		names[i], exprs[i] = bx[0], bx[1]
	}
	return h.List(names...), exprs, x[1]
}

// list collects the elements of a NIL terminated list.
func (cc compiler) list(l heap.Cell) (x []heap.Cell, proper bool) {
	h := cc.h
	for ; h.IsPair(l); l = h.Cdr(l) {
		x = append(x, h.Car(l))
	}
	return x, h.SameSymbol(l, heap.Nil)
}

func (cc compiler) malformed(e heap.Cell, mess string, args ...interface{}) {
	panicerr.Halt(fault.MalformedProgram.
		New(mess, args...).
		WithProperty(fault.ExprProperty, sexpr.Printer{MaxDepth: 4}.String(cc.h, e)))
}
