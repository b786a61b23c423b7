package heap_test

import (
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gosecd/internal/fault"
	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/mem"
	"github.com/jcorbin/gosecd/internal/panicerr"
)

func TestNew(t *testing.T) {
	h := heap.New(heap.WithCells(16))
	for _, want := range []struct {
		c    heap.Cell
		name string
	}{{heap.Nil, "NIL"}, {heap.T, "T"}, {heap.F, "F"}} {
		assert.Equal(t, heap.Symbol, h.Kind(want.c), "expected %v to be a symbol", want.name)
		assert.Equal(t, want.name, h.Name(want.c))
	}
	assert.Equal(t, heap.Stats{Cells: 16, Free: 13, Strings: 8}, h.Stats())
	assert.Equal(t, "heap(13/16 free, 0 gcs, 8/1024 string bytes)", h.String())

	// allocation proceeds in ascending order past the reserved cells
	assert.Equal(t, heap.Cell(3), h.Number(1))
	assert.Equal(t, heap.Cell(4), h.Number(2))
	assert.Equal(t, heap.Cell(5), h.Symbol("X"))
}

func TestIntern(t *testing.T) {
	h := heap.New(heap.WithCells(16))

	off := h.Intern("LAMBDA")
	assert.Equal(t, off, h.Intern("LAMBDA"), "interning must be idempotent")
	assert.Equal(t, "LAMBDA", h.NameAt(off))
	assert.Equal(t, uint32(0), h.Intern("NIL"), "NIL is the first name")

	a, b := h.Symbol("A"), h.Symbol("A")
	assert.NotEqual(t, a, b, "every Symbol call allocates")
	assert.Equal(t, h.Value(a), h.Value(b), "equal names share an offset")
	assert.True(t, h.SameSymbol(a, b))
	assert.False(t, h.SameSymbol(a, h.Symbol("B")))
	assert.False(t, h.SameSymbol(a, h.Number(h.Value(a))), "numbers are never the same symbol")

	assert.True(t, h.IsTrue(h.Symbol("T")))
	assert.False(t, h.IsTrue(h.Symbol("t")))

	assert.Panics(t, func() { h.NameAt(1) }, "offset inside a name must not resolve")
	assert.Panics(t, func() { h.NameAt(1 << 20) }, "offset past the store must not resolve")
}

func TestSelectors(t *testing.T) {
	h := heap.New(heap.WithCells(16))
	a, b := h.Number(1), h.Symbol("B")
	p := h.Cons(a, b)

	assert.True(t, h.IsPair(p))
	assert.False(t, h.IsAtom(p))
	assert.True(t, h.IsAtom(a))
	assert.True(t, h.IsAtom(b))
	assert.Equal(t, a, h.Car(p))
	assert.Equal(t, b, h.Cdr(p))

	for _, atom := range []heap.Cell{a, b, heap.Nil} {
		assert.Equal(t, heap.Nil, h.Car(atom), "car of atom @%v", atom)
		assert.Equal(t, heap.Nil, h.Cdr(atom), "cdr of atom @%v", atom)
	}

	h.SetCar(p, b)
	h.SetCdr(p, a)
	assert.Equal(t, b, h.Car(p))
	assert.Equal(t, a, h.Cdr(p))
	assert.Panics(t, func() { h.SetCar(a, b) })

	l := h.List(h.Number(1), h.Number(2), h.Number(3))
	var got []int64
	for ; h.IsPair(l); l = h.Cdr(l) {
		got = append(got, h.Value(h.Car(l)))
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
	assert.Equal(t, heap.Nil, l)
}

func TestCollect(t *testing.T) {
	h := heap.New(heap.WithCells(64))

	var live heap.Cell = heap.Nil
	h.AddRoots(heap.RootFunc(func(mark func(heap.Cell)) { mark(live) }))

	var garbage []heap.Cell
	for i := 0; i < 10; i++ {
		live = h.Cons(h.Number(int64(i)), live)
		garbage = append(garbage, h.Cons(h.Number(int64(i)), heap.Nil))
	}
	reach := reachable(h, live)
	require.Len(t, reach, 20, "expected 10 pairs and 10 numbers live")

	h.Collect()

	t.Run("safety", func(t *testing.T) {
		for c := range reach {
			assert.False(t, h.IsFree(c), "reachable cell @%v must not be freed", c)
		}
		var got []int64
		for l := live; h.IsPair(l); l = h.Cdr(l) {
			got = append(got, h.Value(h.Car(l)))
		}
		assert.Equal(t, []int64{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, got)
	})

	t.Run("completeness", func(t *testing.T) {
		for _, c := range garbage {
			assert.True(t, h.IsFree(c), "unreachable pair @%v must be freed", c)
		}
		st := h.Stats()
		assert.Equal(t, 64-3-len(reach), st.Free, "every unreachable cell must be free")
		assert.Equal(t, st.Free, st.Reclaimed)
		assert.Equal(t, 1, st.Collections)
	})

	t.Run("idempotent", func(t *testing.T) {
		before := h.Stats()
		h.Collect()
		after := h.Stats()
		assert.Equal(t, before.Free, after.Free)
		assert.Equal(t, before.Collections+1, after.Collections)
	})
}

func TestCollect_automatic(t *testing.T) {
	var logged []string
	h := heap.New(heap.WithCells(10), heap.WithLogf(func(mess string, args ...interface{}) {
		logged = append(logged, mess)
	}))
	require.NoError(t, panicerr.Recover(t.Name(), func() error {
		for i := 0; i < 100; i++ {
			h.Cons(h.Number(int64(i)), heap.Nil)
		}
		return nil
	}))
	assert.NotZero(t, h.Stats().Collections, "expected garbage collections")
	assert.NotEmpty(t, logged, "expected collection logs")
}

func TestCollect_consKeepsArguments(t *testing.T) {
	h := heap.New(heap.WithCells(6))
	h.Number(100)
	h.Number(200)
	n := h.Number(7)
	require.Equal(t, 0, h.Stats().Free)

	p := h.Cons(n, heap.Nil)
	assert.Equal(t, 1, h.Stats().Collections, "cons must have collected")
	assert.Equal(t, n, h.Car(p))
	assert.Equal(t, int64(7), h.Value(h.Car(p)))
}

func TestCollect_deep(t *testing.T) {
	const n = 100000
	h := heap.New(heap.WithCells(2*n + 16))
	release := h.Hold()
	defer release()

	l := heap.Nil
	for i := 0; i < n; i++ {
		l = h.Cons(heap.Nil, l)
	}
	for i := 0; i < n; i++ {
		l = h.Cons(l, heap.Nil)
	}
	h.Collect()
	assert.Equal(t, 16-3, h.Stats().Free)
}

func TestOutOfMemory(t *testing.T) {
	h := heap.New(heap.WithCells(32))

	var live heap.Cell = heap.Nil
	h.AddRoots(heap.RootFunc(func(mark func(heap.Cell)) { mark(live) }))

	count := 0
	err := panicerr.Recover(t.Name(), func() error {
		for {
			live = h.Cons(heap.Nil, live)
			count++
		}
	})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.OutOfMemory), "expected out of memory, got %+v", err)
	assert.False(t, panicerr.IsPanic(err), "exhaustion must halt, not panic")
	assert.Equal(t, 32-3, count, "every free cell must have been used")
	assert.Len(t, reachable(h, live), count, "live list must be intact")
}

func TestOutOfMemory_strings(t *testing.T) {
	h := heap.New(heap.WithCells(32), heap.WithStringSpace(16))
	err := panicerr.Recover(t.Name(), func() error {
		h.Symbol("ABCDEFG")
		h.Symbol("ABCDEFG")
		h.Symbol("H")
		return nil
	})
	assert.True(t, fault.Is(err, fault.OutOfMemory), "expected out of memory, got %+v", err)
	if ex := errorx.Cast(err); assert.NotNil(t, ex) {
		assert.Equal(t, mem.LimitError{Addr: 18, Limit: 16, Op: "stor"}, ex.Cause())
	}
	assert.Equal(t, 16, h.Stats().Strings, "failed intern must not consume space")
}

func TestStringSpace_minimum(t *testing.T) {
	h := heap.New(heap.WithCells(16), heap.WithStringSpace(1))
	assert.Equal(t, "T", h.Name(heap.T), "reserved names must always fit")
	err := panicerr.Recover(t.Name(), func() error {
		h.Symbol("X")
		return nil
	})
	assert.True(t, fault.Is(err, fault.OutOfMemory), "expected out of memory, got %+v", err)
}

func TestHold(t *testing.T) {
	h := heap.New(heap.WithCells(32))

	outer := h.Hold()
	a := h.Number(1)

	inner := h.Hold()
	b := h.Number(2)
	c := h.Number(3)
	h.Collect()
	assert.False(t, h.IsFree(a))
	assert.False(t, h.IsFree(b))
	assert.False(t, h.IsFree(c))
	inner(c)

	h.Collect()
	assert.False(t, h.IsFree(a), "outer hold must keep its cells")
	assert.True(t, h.IsFree(b), "released cells must be collected")
	assert.False(t, h.IsFree(c), "kept cells must escape to the outer hold")

	outer()
	outer()
	assert.Equal(t, 0, h.Held())

	h.Collect()
	assert.True(t, h.IsFree(a))
	assert.True(t, h.IsFree(c))

	d := h.Number(4)
	h.Keep(d)
	assert.Equal(t, 0, h.Held(), "keep without a hold does nothing")
}

func TestAddRoots_remove(t *testing.T) {
	h := heap.New(heap.WithCells(16))
	n := h.Number(42)
	remove := h.AddRoots(heap.RootFunc(func(mark func(heap.Cell)) { mark(n) }))
	h.Collect()
	assert.False(t, h.IsFree(n))
	remove()
	h.Collect()
	assert.True(t, h.IsFree(n))
}

func reachable(h *heap.Heap, root heap.Cell) map[heap.Cell]struct{} {
	seen := make(map[heap.Cell]struct{})
	work := []heap.Cell{root}
	for len(work) > 0 {
		c := work[len(work)-1]
		work = work[:len(work)-1]
		if c < 3 {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		if h.IsPair(c) {
			work = append(work, h.Car(c), h.Cdr(c))
		}
	}
	return seen
}
