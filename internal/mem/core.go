// Package mem provides paged memory that is only allocated where written.
package mem

import "fmt"

// PagedCore tracks the pages of a sparse memory: page bases are kept sorted,
// with sizes in a parallel slice, so that a store between two existing pages
// allocates only the gap.
type PagedCore struct {
	// PageSize specifies the length for newly allocated pages.
	PageSize uint

	// Limit bounds the address space; any load or store reaching past it
	// fails with a LimitError. Zero means unbounded.
	Limit uint

	bases []uint
	sizes []uint
}

// LimitError indicates that a load or store needed memory up to Addr, which
// exceeds Limit.
type LimitError struct {
	Addr  uint
	Limit uint
	Op    string
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("%v needs %v bytes, limit is %v", lim.Op, lim.Addr, lim.Limit)
}

// Allocated returns the total size of all allocated pages.
func (m *PagedCore) Allocated() (n uint) {
	for _, size := range m.sizes {
		n += size
	}
	return n
}

// findPage returns the index of the last page based at or before addr, or 0.
func (m *PagedCore) findPage(addr uint) int {
	i, j := 0, len(m.bases)
	for i < j {
		h := int(uint(i+j)>>1) + 1
		if h < len(m.bases) && m.bases[h] <= addr {
			i = h
		} else {
			j = h - 1
		}
	}
	return i
}

// allocPage returns the page at pageID if it covers addr, otherwise it
// inserts a new page there, trimmed so as not to overlap its neighbors.
func (m *PagedCore) allocPage(pageID int, addr uint) (base, size uint, isNew bool) {
	if pageID == len(m.bases) {
		base = addr / m.PageSize * m.PageSize
		size = m.PageSize
		if last := len(m.bases) - 1; last >= 0 {
			if end := m.bases[last] + m.sizes[last]; base < end {
				size -= end - base
				base = end
			}
		}
		m.bases = append(m.bases, base)
		m.sizes = append(m.sizes, size)
		return base, size, true
	}

	base = m.bases[pageID]
	if addr >= base {
		return base, m.sizes[pageID], false
	}

	next := base
	base = addr / m.PageSize * m.PageSize
	size = m.PageSize
	if gap := next - base; size > gap {
		size = gap
	}
	m.bases = append(m.bases, 0)
	m.sizes = append(m.sizes, 0)
	copy(m.bases[pageID+1:], m.bases[pageID:])
	copy(m.sizes[pageID+1:], m.sizes[pageID:])
	m.bases[pageID] = base
	m.sizes[pageID] = size
	return base, size, true
}

// checkLimit reports whether the half-open range ending at end fits under Limit.
func (m *PagedCore) checkLimit(end uint, op string) error {
	if m.Limit != 0 && end > m.Limit {
		return LimitError{Addr: end, Limit: m.Limit, Op: op}
	}
	return nil
}
