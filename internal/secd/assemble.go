package secd

import (
	"bufio"
	"io"
	"strconv"

	"github.com/jcorbin/gosecd/internal/fault"
	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/panicerr"
	"github.com/jcorbin/gosecd/internal/sexpr"
)

// Assemble converts a code listing, whose instructions may be written as
// mnemonic symbols like LDC or ldf, into executable code. Numeric
// instructions are kept as is. The code lists given to LDF and SEL are
// assembled too; LD and LDC operands are left alone.
func Assemble(h *heap.Heap, code heap.Cell) (out heap.Cell, err error) {
	release := h.Hold()
	defer func() { release(out) }()
	h.Keep(code)

	out = heap.Nil
	err = panicerr.Recover("assemble", func() error {
		out = assembler{h}.assemble(code)
		return nil
	})
	if err != nil {
		out = heap.Nil
	}
	return out, err
}

type assembler struct {
	h *heap.Heap
}

func (as assembler) assemble(code heap.Cell) heap.Cell {
	h := as.h
	var x []heap.Cell
	for l := code; !h.SameSymbol(l, heap.Nil); {
		if !h.IsPair(l) {
			as.malformed(code, "improper code list")
		}
		op := as.op(h.Car(l))
		x = append(x, h.Number(int64(op)))
		l = h.Cdr(l)
		for i := 0; i < op.operands(); i++ {
			if !h.IsPair(l) {
				as.malformed(code, "%v missing operand", op)
			}
			arg := h.Car(l)
			if op == LDF || op == SEL {
				arg = as.assemble(arg)
			}
			x = append(x, arg)
			l = h.Cdr(l)
		}
	}

	out := heap.Nil
	for i := len(x) - 1; i >= 0; i-- {
		out = h.Cons(x[i], out)
	}
	return out
}

func (as assembler) op(c heap.Cell) Op {
	h := as.h
	switch h.Kind(c) {
	case heap.Number:
		if op := Op(h.Value(c)); op.Valid() {
			return op
		}
	case heap.Symbol:
		if op, ok := ParseOp(h.Name(c)); ok {
			return op
		}
	}
	str := sexpr.String(h, c)
	panicerr.Halt(fault.MalformedProgram.
		New("invalid instruction %v", str).
		WithProperty(fault.OpProperty, str))
	return 0
}

func (as assembler) malformed(code heap.Cell, mess string, args ...interface{}) {
	panicerr.Halt(fault.MalformedProgram.
		New(mess, args...).
		WithProperty(fault.ExprProperty, sexpr.Printer{MaxDepth: 4}.String(as.h, code)))
}

// WriteCode writes a code listing to w with instructions by name, like
// (LDC 3 LDC 4 ADD STOP). Anything that does not decode as an instruction is
// written as a plain value, so it may also be used on partly executed or
// malformed code. It does not allocate.
func WriteCode(w io.Writer, h *heap.Heap, code heap.Cell) error {
	return codeWriter{}.write(w, h, code)
}

type codeWriter struct {
	// MaxDepth bounds the nesting of printed operand values, like
	// sexpr.Printer.
	MaxDepth int
}

func (cw codeWriter) write(w io.Writer, h *heap.Heap, code heap.Cell) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	cw.code(bw, h, code)
	return bw.Flush()
}

func (cw codeWriter) code(w *bufio.Writer, h *heap.Heap, code heap.Cell) {
	if !h.IsPair(code) {
		cw.value(w, h, code)
		return
	}
	w.WriteByte('(')
	first := true
	for l := code; h.IsPair(l); {
		if !first {
			w.WriteByte(' ')
		}
		first = false

		opc := h.Car(l)
		l = h.Cdr(l)
		op := Op(h.Value(opc))
		if !h.IsNumber(opc) || !op.Valid() {
			cw.value(w, h, opc)
			continue
		}
		w.WriteString(op.String())
		for i := 0; i < op.operands() && h.IsPair(l); i++ {
			w.WriteByte(' ')
			if op == LDF || op == SEL {
				cw.code(w, h, h.Car(l))
			} else {
				cw.value(w, h, h.Car(l))
			}
			l = h.Cdr(l)
		}
		if !h.IsPair(l) && !h.SameSymbol(l, heap.Nil) {
			w.WriteString(" . ")
			cw.value(w, h, l)
		}
	}
	w.WriteByte(')')
}

func (cw codeWriter) value(w *bufio.Writer, h *heap.Heap, c heap.Cell) {
	if h.IsNumber(c) {
		w.WriteString(strconv.FormatInt(h.Value(c), 10))
		return
	}
	sexpr.Printer{MaxDepth: cw.MaxDepth}.Fprint(w, h, c)
}
