// Package sexpr reads and prints heap values in S-expression notation.
package sexpr

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/joomcode/errorx"

	"github.com/jcorbin/gosecd/internal/fault"
	"github.com/jcorbin/gosecd/internal/fileinput"
	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/panicerr"
)

// Reader parses S-expressions from an input into heap cells.
//
// Integers are runs of decimal digits with an optional sign; any other run
// of non-delimiter runes is a symbol, with its case preserved. 'x reads as
// (QUOTE x), and ; comments out the rest of a line.
type Reader struct {
	h  *heap.Heap
	in *fileinput.Input
}

// NewReader creates a reader allocating into h.
func NewReader(h *heap.Heap, in *fileinput.Input) *Reader {
	return &Reader{h: h, in: in}
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokOpen
	tokClose
	tokDot
	tokQuote
	tokAtom
)

type token struct {
	kind tokenKind
	text string
	loc  fileinput.Location
}

// Read returns the next expression, or io.EOF once the input ends cleanly.
// The returned cell is held by the caller's heap hold, if one is open.
// Running out of heap space is returned as a fault.OutOfMemory error.
func (rd *Reader) Read() (c heap.Cell, err error) {
	release := rd.h.Hold()
	defer func() { release(c) }()

	c = heap.Nil
	err = panicerr.Recover("read", func() error {
		tok, err := rd.scan()
		if err != nil {
			return err
		}
		if tok.kind == tokEOF {
			return io.EOF
		}
		c, err = rd.expr(tok)
		return err
	})
	if err != nil {
		c = heap.Nil
	}
	return c, err
}

func (rd *Reader) expr(tok token) (heap.Cell, error) {
	switch tok.kind {
	case tokOpen:
		return rd.list(tok)
	case tokQuote:
		next, err := rd.scan()
		if err != nil {
			return heap.Nil, err
		}
		if next.kind == tokEOF {
			return heap.Nil, rd.fail(fault.UnexpectedEOF, tok, "nothing to quote")
		}
		x, err := rd.expr(next)
		if err != nil {
			return heap.Nil, err
		}
		return rd.h.List(rd.h.Symbol("QUOTE"), x), nil
	case tokAtom:
		return rd.atom(tok)
	case tokClose:
		return heap.Nil, rd.fail(fault.MalformedInput, tok, "unexpected )")
	case tokDot:
		return heap.Nil, rd.fail(fault.MalformedInput, tok, "misplaced .")
	default:
		return heap.Nil, rd.fail(fault.UnexpectedEOF, tok, "expected expression")
	}
}

func (rd *Reader) list(open token) (heap.Cell, error) {
	var items []heap.Cell
	tail := heap.Nil
	for {
		tok, err := rd.scan()
		if err != nil {
			return heap.Nil, err
		}
		switch tok.kind {
		case tokEOF:
			return heap.Nil, rd.fail(fault.UnexpectedEOF, open, "unterminated list")

		case tokClose:
			return rd.build(items, tail), nil

		case tokDot:
			if len(items) == 0 {
				return heap.Nil, rd.fail(fault.MalformedInput, tok, "misplaced .")
			}
			next, err := rd.scan()
			if err != nil {
				return heap.Nil, err
			}
			if next.kind == tokEOF {
				return heap.Nil, rd.fail(fault.UnexpectedEOF, open, "unterminated dotted list")
			}
			if tail, err = rd.expr(next); err != nil {
				return heap.Nil, err
			}
			end, err := rd.scan()
			if err != nil {
				return heap.Nil, err
			}
			switch end.kind {
			case tokClose:
				return rd.build(items, tail), nil
			case tokEOF:
				return heap.Nil, rd.fail(fault.UnexpectedEOF, open, "unterminated dotted list")
			default:
				return heap.Nil, rd.fail(fault.MalformedInput, end, "expected ) after dotted tail")
			}

		default:
			x, err := rd.expr(tok)
			if err != nil {
				return heap.Nil, err
			}
			items = append(items, x)
		}
	}
}

// build conses items onto tail; every item is already held by Read's hold.
func (rd *Reader) build(items []heap.Cell, tail heap.Cell) heap.Cell {
	l := tail
	for i := len(items) - 1; i >= 0; i-- {
		l = rd.h.Cons(items[i], l)
	}
	return l
}

func (rd *Reader) atom(tok token) (heap.Cell, error) {
	if isInteger(tok.text) {
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return heap.Nil, rd.fail(fault.MalformedInput, tok, "integer %v out of range", tok.text)
		}
		return rd.h.Number(n), nil
	}
	return rd.h.Symbol(tok.text), nil
}

func isInteger(s string) bool {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isDelimiter(r rune) bool {
	switch r {
	case '(', ')', '\'', ';':
		return true
	}
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

func (rd *Reader) scan() (tok token, err error) {
	var r rune
	for {
		r, _, err = rd.in.ReadRune()
		if err == io.EOF {
			tok.loc = rd.in.Location()
			return tok, nil
		} else if err != nil {
			return tok, err
		}
		if r == ';' {
			for r != '\n' {
				if r, _, err = rd.in.ReadRune(); err == io.EOF {
					tok.loc = rd.in.Location()
					return tok, nil
				} else if err != nil {
					return tok, err
				}
			}
			continue
		}
		if !unicode.IsSpace(r) && !unicode.IsControl(r) {
			break
		}
	}

	tok.loc = rd.in.Location()
	switch r {
	case '(':
		tok.kind = tokOpen
		return tok, nil
	case ')':
		tok.kind = tokClose
		return tok, nil
	case '\'':
		tok.kind = tokQuote
		return tok, nil
	}

	var sb strings.Builder
	sb.WriteRune(r)
	for {
		r, _, err = rd.in.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return tok, err
		}
		if isDelimiter(r) {
			if err := rd.in.UnreadRune(); err != nil {
				return tok, err
			}
			break
		}
		sb.WriteRune(r)
	}

	tok.text = sb.String()
	if tok.text == "." {
		tok.kind = tokDot
	} else {
		tok.kind = tokAtom
	}
	return tok, nil
}

func (rd *Reader) fail(t *errorx.Type, tok token, mess string, args ...interface{}) error {
	return t.New(mess, args...).WithProperty(fault.LocationProperty, tok.loc.String())
}
