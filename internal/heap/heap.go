// Package heap implements the cell store shared by every value the machine
// touches: symbols, integers and pairs each occupy one slot of a single flat
// arena, addressed by a dense index rather than by Go pointers.
//
// Slots are reclaimed only by mark-and-sweep collection, which runs whenever
// the allocator finds its free list empty. Anything that must survive a
// collection has to be reachable from a root: the reserved atoms, a
// registered RootSet, or a cell held by an open Hold.
//
// Heap methods that allocate halt (see panicerr.Halt) when memory runs out;
// callers run them under panicerr.Recover.
package heap

import (
	"fmt"

	"github.com/jcorbin/gosecd/internal/fault"
	"github.com/jcorbin/gosecd/internal/panicerr"
)

// Cell is an index into the heap; it is the universal value handle.
type Cell uint32

// Reserved cells, created with the heap and never reclaimed.
const (
	Nil Cell = iota
	T
	F

	reserved = iota
)

// Kind tags what a cell currently holds.
type Kind uint8

// Kinds of cell.
const (
	Free Kind = iota
	Symbol
	Number
	Pair
)

var kindNames = [...]string{"free", "symbol", "number", "pair"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

type cell struct {
	kind     Kind
	car, cdr Cell
	val      int64 // integer value, or string store offset for symbols
}

// Heap is a fixed capacity arena of cells, with its string store.
type Heap struct {
	cells []cell
	free  []Cell // top of stack is the next cell handed out
	strs  stringStore

	roots []RootSet
	held  []Cell
	holds int

	marks []uint64
	work  []Cell

	logfn func(mess string, args ...interface{})
	stats Stats
}

// Stats reports the state of a heap's storage.
type Stats struct {
	Cells       int // capacity
	Free        int // cells on the free list
	Collections int // collections run so far
	Reclaimed   int // free list length after the last collection
	Strings     int // bytes used by the string store
}

// New creates a heap with all cells except the reserved atoms free.
func New(opts ...Option) *Heap {
	h := &Heap{}
	defaultOptions.apply(h)
	Options(opts...).apply(h)

	h.marks = make([]uint64, (len(h.cells)+63)/64)
	h.free = make([]Cell, 0, len(h.cells)-reserved)
	for i := len(h.cells) - 1; i >= reserved; i-- {
		h.free = append(h.free, Cell(i))
	}

	for c, name := range [reserved]string{"NIL", "T", "F"} {
		h.cells[c] = cell{kind: Symbol, val: int64(h.strs.intern(name))}
	}
	return h
}

// Cap returns the total number of cells, reserved ones included.
func (h *Heap) Cap() int { return len(h.cells) }

// Stats returns a snapshot of storage statistics.
func (h *Heap) Stats() Stats {
	st := h.stats
	st.Cells = len(h.cells)
	st.Free = len(h.free)
	st.Strings = int(h.strs.top)
	return st
}

func (h *Heap) logf(mess string, args ...interface{}) {
	if h.logfn != nil {
		h.logfn(mess, args...)
	}
}

//// Constructors

// Symbol allocates a symbol cell naming name. Every call allocates a new
// cell, but equal names share one string store offset.
func (h *Heap) Symbol(name string) Cell {
	off := h.strs.intern(name)
	c := h.get()
	h.cells[c] = cell{kind: Symbol, val: int64(off)}
	return c
}

// Number allocates an integer cell.
func (h *Heap) Number(n int64) Cell {
	c := h.get()
	h.cells[c] = cell{kind: Number, val: n}
	return c
}

// Cons allocates a pair cell. Both car and cdr survive any collection
// triggered by the allocation.
func (h *Heap) Cons(car, cdr Cell) Cell {
	h.check(car)
	h.check(cdr)
	c := h.get(car, cdr)
	h.cells[c] = cell{kind: Pair, car: car, cdr: cdr}
	return c
}

// Bool returns T or F.
func (h *Heap) Bool(b bool) Cell {
	if b {
		return T
	}
	return F
}

// List allocates a NIL terminated list of the given cells.
func (h *Heap) List(cells ...Cell) (l Cell) {
	release := h.Hold()
	defer func() { release(l) }()
	h.Keep(cells...)
	l = Nil
	for i := len(cells) - 1; i >= 0; i-- {
		l = h.Cons(cells[i], l)
	}
	return l
}

//// Selectors

// Kind returns the kind of value held by c.
func (h *Heap) Kind(c Cell) Kind { return h.cells[c].kind }

// IsAtom returns true for symbols and numbers.
func (h *Heap) IsAtom(c Cell) bool {
	k := h.cells[c].kind
	return k == Symbol || k == Number
}

// IsSymbol returns true if c is a symbol.
func (h *Heap) IsSymbol(c Cell) bool { return h.cells[c].kind == Symbol }

// IsNumber returns true if c is a number.
func (h *Heap) IsNumber(c Cell) bool { return h.cells[c].kind == Number }

// IsPair returns true if c is a pair.
func (h *Heap) IsPair(c Cell) bool { return h.cells[c].kind == Pair }

// IsFree returns true if c is currently on the free list.
func (h *Heap) IsFree(c Cell) bool { return h.cells[c].kind == Free }

// Value returns the raw integer payload of an atom: a number's value or a
// symbol's string store offset. It is 0 for pairs.
func (h *Heap) Value(c Cell) int64 { return h.cells[c].val }

// Car returns the first half of a pair, or Nil for anything else.
func (h *Heap) Car(c Cell) Cell {
	if cl := &h.cells[c]; cl.kind == Pair {
		return cl.car
	}
	return Nil
}

// Cdr returns the second half of a pair, or Nil for anything else.
func (h *Heap) Cdr(c Cell) Cell {
	if cl := &h.cells[c]; cl.kind == Pair {
		return cl.cdr
	}
	return Nil
}

// SetCar destructively replaces the car of pair p.
func (h *Heap) SetCar(p, v Cell) {
	h.check(v)
	if cl := &h.cells[p]; cl.kind == Pair {
		cl.car = v
		return
	}
	panic(fmt.Sprintf("SetCar of non-pair @%v (%v)", p, h.cells[p].kind))
}

// SetCdr destructively replaces the cdr of pair p.
func (h *Heap) SetCdr(p, v Cell) {
	h.check(v)
	if cl := &h.cells[p]; cl.kind == Pair {
		cl.cdr = v
		return
	}
	panic(fmt.Sprintf("SetCdr of non-pair @%v (%v)", p, h.cells[p].kind))
}

// Name returns the name of symbol c.
func (h *Heap) Name(c Cell) string {
	if cl := h.cells[c]; cl.kind == Symbol {
		return h.strs.lookup(uint32(cl.val))
	}
	panic(fmt.Sprintf("Name of non-symbol @%v (%v)", c, h.cells[c].kind))
}

// Intern adds name to the string store, if not already there, and returns
// its offset.
func (h *Heap) Intern(name string) uint32 { return h.strs.intern(name) }

// NameAt returns the name stored at a string store offset; the offset must
// have been returned by Intern.
func (h *Heap) NameAt(off uint32) string { return h.strs.lookup(off) }

// SameSymbol returns true if a and b are symbols with the same name.
func (h *Heap) SameSymbol(a, b Cell) bool {
	ca, cb := h.cells[a], h.cells[b]
	return ca.kind == Symbol && cb.kind == Symbol && ca.val == cb.val
}

// IsTrue returns true if c is a symbol with the same representation as T.
func (h *Heap) IsTrue(c Cell) bool { return h.SameSymbol(c, T) }

func (h *Heap) check(c Cell) {
	if int(c) >= len(h.cells) {
		panic(fmt.Sprintf("invalid cell @%v beyond heap capacity %v", c, len(h.cells)))
	}
	if h.cells[c].kind == Free {
		panic(fmt.Sprintf("use of free cell @%v", c))
	}
}

//// Allocator

// get pops the free list, collecting first if it is empty; any keep cells are
// marked as extra roots by that collection.
func (h *Heap) get(keep ...Cell) Cell {
	if len(h.free) == 0 {
		h.collect(keep)
		if len(h.free) == 0 {
			panicerr.Halt(fault.OutOfMemory.New("no free cells after collection (capacity %v)", len(h.cells)))
		}
	}
	i := len(h.free) - 1
	c := h.free[i]
	h.free = h.free[:i]
	if h.holds > 0 {
		h.held = append(h.held, c)
	}
	return c
}

func (h *Heap) String() string {
	st := h.Stats()
	return fmt.Sprintf("heap(%v/%v free, %v gcs, %v/%v string bytes)",
		st.Free, st.Cells, st.Collections, st.Strings, h.strs.mem.Allocated())
}
