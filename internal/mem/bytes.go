package mem

import "bytes"

// DefaultBytesPageSize provides a default for Bytes.PageSize.
const DefaultBytesPageSize = 1024

// Bytes implements a byte-oriented paged memory.
// Pages may not necessarily be the same size, but usually are in practice.
type Bytes struct {
	PagedCore
	pages [][]byte
}

// Size returns an address one position higher than the last position in the
// last page allocated so far.
func (m *Bytes) Size() uint {
	if i := len(m.bases) - 1; i >= 0 {
		return m.bases[i] + uint(len(m.pages[i]))
	}
	return 0
}

// Load returns a single byte from the given address.
// Unallocated pages are left unallocated, resulting in implicit 0 values.
// Returns an error if addr is at or past any Limit.
func (m *Bytes) Load(addr uint) (byte, error) {
	if err := m.checkLimit(addr+1, "load"); err != nil {
		return 0, err
	}

	if len(m.pages) == 0 {
		return 0, nil
	}

	pageID := m.findPage(addr)
	base := m.bases[pageID]
	page := m.pages[pageID]
	if i := int(addr) - int(base); 0 <= i && i < len(page) {
		return page[i], nil
	}

	return 0, nil
}

// LoadInto reads len(buf) bytes from memory starting at addr.
// Skips any unallocated pages, zeroing the result buffer where encountered.
// Returns an error if Limit would be exceeded; no partial load is done.
func (m *Bytes) LoadInto(addr uint, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	end := addr + uint(len(buf))
	if err := m.checkLimit(end, "load"); err != nil {
		return err
	}

	for pageID := m.findPage(addr); addr < end && pageID < len(m.bases); pageID++ {
		base := m.bases[pageID]
		if base > end {
			break
		}

		if skip := int(base) - int(addr); skip > 0 {
			if skip >= len(buf) {
				break
			}
			addr += uint(skip)
			for i := range buf[:skip] {
				buf[i] = 0
			}
			buf = buf[skip:]
		}

		page := m.pages[pageID]
		if skip := int(addr) - int(base); skip > 0 {
			if skip >= len(page) {
				continue
			}
			page = page[skip:]
		}

		n := copy(buf, page)
		buf = buf[n:]
		addr += uint(n)
	}

	for i := range buf {
		buf[i] = 0
	}

	return nil
}

// LoadUntil returns the bytes from addr up to, but not including, the first
// delim byte. Reading stops with an error at Limit, or returns what was read
// when it runs past the allocated Size.
func (m *Bytes) LoadUntil(addr uint, delim byte) ([]byte, error) {
	const chunkSize = 32

	var (
		out []byte
		buf [chunkSize]byte
	)
	for size := m.Size(); addr < size; addr += chunkSize {
		chunk := buf[:]
		if rem := size - addr; rem < chunkSize {
			chunk = chunk[:rem]
		}
		if err := m.LoadInto(addr, chunk); err != nil {
			return out, err
		}
		if i := bytes.IndexByte(chunk, delim); i >= 0 {
			return append(out, chunk[:i]...), nil
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// Stor stores any values at addr, allocating pages if necessary.
// Returns an error if Limit would be exceeded; no partial store is done.
func (m *Bytes) Stor(addr uint, values ...byte) error {
	if len(values) == 0 {
		return nil
	}

	end := addr + uint(len(values))
	if err := m.checkLimit(end, "stor"); err != nil {
		return err
	}

	if m.PageSize == 0 {
		m.PageSize = DefaultBytesPageSize
	}

	for pageID := m.findPage(addr); addr < end; pageID++ {
		base, size, page := m.allocPage(pageID, addr)
		if skip := addr - base; skip > 0 {
			if skip >= size {
				continue
			}
			page = page[skip:]
		}
		n := copy(page, values)
		values = values[n:]
		addr += uint(n)
	}

	return nil
}

func (m *Bytes) allocPage(pageID int, addr uint) (base, size uint, page []byte) {
	base, size, isNew := m.PagedCore.allocPage(pageID, addr)
	if isNew {
		page = make([]byte, size)
		if pageID == len(m.pages) {
			m.pages = append(m.pages, page)
		} else {
			m.pages = append(m.pages, nil)
			copy(m.pages[pageID+1:], m.pages[pageID:])
			m.pages[pageID] = page
		}
	} else {
		page = m.pages[pageID]
	}
	return base, size, page
}
