package sexpr_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gosecd/internal/fault"
	"github.com/jcorbin/gosecd/internal/fileinput"
	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/sexpr"
)

func reader(h *heap.Heap, src string) *sexpr.Reader {
	in := fileinput.New(fileinput.NamedReader("test", strings.NewReader(src)))
	return sexpr.NewReader(h, in)
}

func readAll(t *testing.T, h *heap.Heap, src string) (out []string, err error) {
	rd := reader(h, src)
	for {
		c, err := rd.Read()
		if err == io.EOF {
			return out, nil
		} else if err != nil {
			return out, err
		}
		out = append(out, sexpr.String(h, c))
	}
}

func TestReader(t *testing.T) {
	for _, tc := range []struct {
		name   string
		src    string
		expect []string
	}{
		{"empty", "", nil},
		{"blank", "  \n\t ", nil},
		{"comment only", "; nothing here", nil},
		{"atoms", "x 42 -7 +3 - foo-bar", []string{"x", "42", "-7", "3", "-", "foo-bar"}},
		{"case preserved", "Lambda", []string{"Lambda"}},
		{"list", "(a b c)", []string{"(a b c)"}},
		{"empty list", "()", []string{"NIL"}},
		{"nested", "(a (b (c)) d)", []string{"(a (b (c)) d)"}},
		{"dotted", "(a . b)", []string{"(a . b)"}},
		{"dotted list", "(a b . c)", []string{"(a b . c)"}},
		{"dotted nil tail", "(a . (b . ()))", []string{"(a b)"}},
		{"quote", "'x '(1 2)", []string{"(QUOTE x)", "(QUOTE (1 2))"}},
		{"comments", "(a ; first\n b) ; trailing\n c", []string{"(a b)", "c"}},
		{"no spaces", "(a(b)c)", []string{"(a (b) c)"}},
		{"several", "1\n(2)\n3", []string{"1", "(2)", "3"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := heap.New()
			out, err := readAll(t, h, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, out)
		})
	}
}

func TestReader_errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		typ  interface{}
		loc  string
	}{
		{"unexpected close", "a )", fault.MalformedInput, "test:1:3"},
		{"leading dot", "( . a)", fault.MalformedInput, "test:1:3"},
		{"bare dot", ".", fault.MalformedInput, "test:1:1"},
		{"two tails", "(a . b c)", fault.MalformedInput, "test:1:8"},
		{"overflow", "99999999999999999999", fault.MalformedInput, "test:1:1"},
		{"unterminated", "(a (b c)", fault.UnexpectedEOF, "test:1:1"},
		{"unterminated dot", "(a .", fault.UnexpectedEOF, "test:1:1"},
		{"dangling quote", "'", fault.UnexpectedEOF, "test:1:1"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := heap.New()
			_, err := readAll(t, h, tc.src)
			require.Error(t, err)
			switch tc.typ {
			case fault.UnexpectedEOF:
				assert.True(t, fault.Is(err, fault.UnexpectedEOF), "expected unexpected EOF, got %v", err)
			default:
				assert.True(t, fault.Is(err, fault.MalformedInput), "expected malformed input, got %v", err)
				assert.False(t, fault.Is(err, fault.UnexpectedEOF), "expected plain malformed input, got %v", err)
			}
			loc, ok := fault.Property(err, fault.LocationProperty)
			assert.True(t, ok)
			assert.Equal(t, tc.loc, loc)
		})
	}
}

func TestReader_survivesCollection(t *testing.T) {
	h := heap.New(heap.WithCells(64))
	release := h.Hold()
	defer release()

	rd := reader(h, "(1 2 3 4 5 6 7 8) (a b c d e f g h)")
	first, err := rd.Read()
	require.NoError(t, err)
	second, err := rd.Read()
	require.NoError(t, err)

	h.Collect()
	assert.Equal(t, "(1 2 3 4 5 6 7 8)", sexpr.String(h, first))
	assert.Equal(t, "(a b c d e f g h)", sexpr.String(h, second))
}

func TestReader_outOfMemory(t *testing.T) {
	h := heap.New(heap.WithCells(8))
	rd := reader(h, "(1 2 3 4 5 6 7 8 9 10)")
	c, err := rd.Read()
	assert.True(t, fault.Is(err, fault.OutOfMemory), "got %v", err)
	assert.Equal(t, heap.Nil, c)
}

func TestPrinter(t *testing.T) {
	h := heap.New()

	t.Run("atoms", func(t *testing.T) {
		assert.Equal(t, "NIL", sexpr.String(h, heap.Nil))
		assert.Equal(t, "T", sexpr.String(h, heap.T))
		assert.Equal(t, "-12", sexpr.String(h, h.Number(-12)))
		assert.Equal(t, "a^Ib", sexpr.String(h, h.Symbol("a\tb")))
	})

	t.Run("cycles", func(t *testing.T) {
		loop := h.List(h.Symbol("a"), h.Symbol("b"))
		h.SetCdr(h.Cdr(loop), loop)
		assert.Equal(t, "(a b . ...)", sexpr.String(h, loop))

		self := h.Cons(heap.Nil, heap.Nil)
		h.SetCar(self, self)
		assert.Equal(t, "(...)", sexpr.String(h, self))
	})

	t.Run("shared", func(t *testing.T) {
		x := h.List(h.Number(1))
		assert.Equal(t, "((1) (1))", sexpr.String(h, h.List(x, x)))
	})

	t.Run("max depth", func(t *testing.T) {
		deep := h.List(h.List(h.List(h.Symbol("x"))))
		assert.Equal(t, "((...))", sexpr.Printer{MaxDepth: 2}.String(h, deep))
		assert.Equal(t, "(((x)))", sexpr.Printer{}.String(h, deep))
	})
}
