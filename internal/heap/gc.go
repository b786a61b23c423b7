package heap

import "fmt"

// RootSet is implemented by anything holding cells that must survive
// collection, like a machine's registers.
type RootSet interface {
	Roots(mark func(Cell))
}

// RootFunc adapts a function to a RootSet.
type RootFunc func(mark func(Cell))

// Roots calls f.
func (f RootFunc) Roots(mark func(Cell)) { f(mark) }

// AddRoots registers a root set, returning a function that unregisters it.
func (h *Heap) AddRoots(rs RootSet) (remove func()) {
	i := len(h.roots)
	h.roots = append(h.roots, rs)
	return func() { h.roots[i] = nil }
}

// Collect runs a full mark and sweep collection, rebuilding the free list
// from every cell not reachable from a root.
func (h *Heap) Collect() { h.collect(nil) }

func (h *Heap) collect(keep []Cell) {
	h.logf("collecting garbage...")

	for c := Cell(0); c < reserved; c++ {
		h.mark(c)
	}
	for _, rs := range h.roots {
		if rs != nil {
			rs.Roots(h.mark)
		}
	}
	for _, c := range h.held {
		h.mark(c)
	}
	for _, c := range keep {
		h.mark(c)
	}

	n := h.sweep()
	h.stats.Collections++
	h.stats.Reclaimed = n
	h.logf("collected garbage: %v free of %v", n, len(h.cells))
}

// mark sets the mark bit of every cell reachable from c, using an explicit
// work list so deep lists cannot overflow the Go stack.
func (h *Heap) mark(c Cell) {
	work := append(h.work[:0], c)
	for len(work) > 0 {
		i := len(work) - 1
		c, work = work[i], work[:i]
		if h.marked(c) {
			continue
		}
		cl := &h.cells[c]
		if cl.kind == Free {
			panic(fmt.Sprintf("dangling reference to free cell @%v", c))
		}
		h.setMark(c)
		if cl.kind == Pair {
			work = append(work, cl.cdr, cl.car)
		}
	}
	h.work = work[:0]
}

// sweep relinks every unmarked cell onto a fresh free list and clears all
// marks, returning the new free list length.
func (h *Heap) sweep() int {
	h.free = h.free[:0]
	for i := len(h.cells) - 1; i >= reserved; i-- {
		if !h.marked(Cell(i)) {
			h.cells[i] = cell{}
			h.free = append(h.free, Cell(i))
		}
	}
	for i := range h.marks {
		h.marks[i] = 0
	}
	return len(h.free)
}

func (h *Heap) marked(c Cell) bool { return h.marks[c/64]&(1<<(c%64)) != 0 }
func (h *Heap) setMark(c Cell)     { h.marks[c/64] |= 1 << (c % 64) }
