package heap

// Hold opens an allocation hold: every cell allocated until the returned
// release function is called counts as a root. This protects Go-side
// temporaries, like a number about to be consed onto a list, that nothing in
// the heap refers to yet.
//
// Holds nest and must be released in reverse order. Release drops all cells
// held since the matching Hold, then re-holds any keep cells in the
// enclosing hold, letting a result escape to the caller's hold.
func (h *Heap) Hold() (release func(keep ...Cell)) {
	n := len(h.held)
	h.holds++
	released := false
	return func(keep ...Cell) {
		if released {
			return
		}
		released = true
		h.holds--
		h.held = h.held[:n]
		if h.holds > 0 {
			h.held = append(h.held, keep...)
		}
	}
}

// Keep adds cells to the current hold; it does nothing if no hold is open.
func (h *Heap) Keep(cells ...Cell) {
	if h.holds > 0 {
		h.held = append(h.held, cells...)
	}
}

// Held returns the number of cells currently held.
func (h *Heap) Held() int { return len(h.held) }
