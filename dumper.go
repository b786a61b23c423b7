package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/runeio"
)

type fmtBuf interface {
	Len() int
	Write(p []byte) (n int, err error)
	WriteByte(c byte) error
	WriteRune(r rune) (n int, err error)
	WriteString(s string) (n int, err error)
}

// heapDumper writes a listing of every cell in a heap: one line per live
// cell, with runs of free cells collapsed into a single range line.
type heapDumper struct {
	h   *heap.Heap
	out io.Writer

	addrWidth int
}

func (dump heapDumper) dump() {
	st := dump.h.Stats()
	fmt.Fprintf(dump.out, "# Heap Dump\n")
	fmt.Fprintf(dump.out, "  cells: %v free: %v\n", st.Cells, st.Free)
	fmt.Fprintf(dump.out, "  collections: %v last reclaimed: %v\n", st.Collections, st.Reclaimed)
	fmt.Fprintf(dump.out, "  strings: %v bytes\n", st.Strings)
	dump.dumpCells()
}

func (dump *heapDumper) dumpCells() {
	n := dump.h.Cap()
	if dump.addrWidth == 0 {
		dump.addrWidth = len(strconv.Itoa(n))
	}
	var buf lineBuffer
	for c := 0; c < n; {
		fmt.Fprintf(&buf, "  @%*v ", dump.addrWidth, c)
		c = dump.formatCell(&buf, c)
		buf.WriteTo(dump.out)
	}
}

func (dump *heapDumper) formatCell(buf fmtBuf, i int) int {
	h, c := dump.h, heap.Cell(i)
	switch h.Kind(c) {
	case heap.Symbol:
		buf.WriteString("symbol ")
		runeio.WriteEscapedString(buf, h.Name(c))
		fmt.Fprintf(buf, " #%v", h.Value(c))

	case heap.Number:
		buf.WriteString("number ")
		buf.WriteString(strconv.FormatInt(h.Value(c), 10))

	case heap.Pair:
		fmt.Fprintf(buf, "pair @%v . @%v", h.Car(c), h.Cdr(c))

	default:
		end := i + 1
		for end < h.Cap() && h.IsFree(heap.Cell(end)) {
			end++
		}
		if end-i > 1 {
			fmt.Fprintf(buf, "free ... @%v", end-1)
		} else {
			buf.WriteString("free")
		}
		return end
	}
	return i + 1
}

// lineBuffer accumulates one line of output at a time.
type lineBuffer struct{ bytes.Buffer }

// WriteTo writes the buffered line, adding a final newline if missing, and
// resets the buffer.
func (buf *lineBuffer) WriteTo(w io.Writer) (int64, error) {
	if b := buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		buf.WriteByte('\n')
	}
	return buf.Buffer.WriteTo(w)
}
