package sexpr

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/runeio"
)

// Printer writes cells in list notation. Printing never allocates, so it is
// safe at any point of an execution.
//
// Shared structure is printed once per occurrence; only a pair that refers
// back to one still being printed (like a recursive environment) is elided
// as "...".
type Printer struct {
	// MaxDepth elides lists nested deeper than this as "..."; 0 means no limit.
	MaxDepth int
}

// Fprint writes c to w with a default Printer.
func Fprint(w io.Writer, h *heap.Heap, c heap.Cell) error {
	return Printer{}.Fprint(w, h, c)
}

// String formats c with a default Printer.
func String(h *heap.Heap, c heap.Cell) string {
	return Printer{}.String(h, c)
}

// String formats c.
func (p Printer) String(h *heap.Heap, c heap.Cell) string {
	var sb strings.Builder
	p.Fprint(&sb, h, c)
	return sb.String()
}

// Fprint writes c to w.
func (p Printer) Fprint(w io.Writer, h *heap.Heap, c heap.Cell) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	pr := printing{Printer: p, h: h, w: bw, open: make(map[heap.Cell]struct{})}
	pr.print(c, 0)
	return bw.Flush()
}

type printing struct {
	Printer
	h    *heap.Heap
	w    *bufio.Writer
	open map[heap.Cell]struct{}
}

func (pr *printing) print(c heap.Cell, depth int) {
	switch pr.h.Kind(c) {
	case heap.Symbol:
		runeio.WriteEscapedString(pr.w, pr.h.Name(c))
	case heap.Number:
		pr.w.WriteString(strconv.FormatInt(pr.h.Value(c), 10))
	case heap.Pair:
		pr.list(c, depth)
	default:
		pr.w.WriteString("#<free @")
		pr.w.WriteString(strconv.FormatUint(uint64(c), 10))
		pr.w.WriteByte('>')
	}
}

func (pr *printing) list(c heap.Cell, depth int) {
	if _, isOpen := pr.open[c]; isOpen || (pr.MaxDepth > 0 && depth >= pr.MaxDepth) {
		pr.w.WriteString("...")
		return
	}

	var spine []heap.Cell
	defer func() {
		for _, p := range spine {
			delete(pr.open, p)
		}
	}()

	pr.w.WriteByte('(')
	for first := true; ; first = false {
		if !first {
			pr.w.WriteByte(' ')
		}
		pr.open[c] = struct{}{}
		spine = append(spine, c)
		pr.print(pr.h.Car(c), depth+1)

		c = pr.h.Cdr(c)
		if pr.h.SameSymbol(c, heap.Nil) {
			break
		}
		if !pr.h.IsPair(c) {
			pr.w.WriteString(" . ")
			pr.print(c, depth+1)
			break
		}
		if _, isOpen := pr.open[c]; isOpen {
			pr.w.WriteString(" . ...")
			break
		}
	}
	pr.w.WriteByte(')')
}
