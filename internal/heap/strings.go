package heap

import (
	"fmt"
	"strings"

	"github.com/jcorbin/gosecd/internal/fault"
	"github.com/jcorbin/gosecd/internal/mem"
	"github.com/jcorbin/gosecd/internal/panicerr"
)

// stringStore is an append-only buffer of NUL-terminated names. Each name is
// stored once; the index only speeds up finding an existing entry, lookups
// still scan the buffer from an offset to the next NUL.
type stringStore struct {
	mem   mem.Bytes
	top   uint32
	index map[string]uint32
}

func (ss *stringStore) intern(name string) uint32 {
	if off, defined := ss.index[name]; defined {
		return off
	}
	if strings.IndexByte(name, 0) >= 0 {
		panic(fmt.Sprintf("symbol name %q contains NUL", name))
	}

	off := ss.top
	buf := make([]byte, len(name)+1)
	copy(buf, name)
	if err := ss.mem.Stor(uint(off), buf...); err != nil {
		panicerr.Halt(fault.OutOfMemory.Wrap(err, "string store exhausted interning %q", name))
	}
	ss.top += uint32(len(buf))

	if ss.index == nil {
		ss.index = make(map[string]uint32)
	}
	ss.index[name] = off
	return off
}

func (ss *stringStore) lookup(off uint32) string {
	valid := off < ss.top
	if valid && off > 0 {
		b, err := ss.mem.Load(uint(off - 1))
		valid = err == nil && b == 0
	}
	if !valid {
		panic(fmt.Sprintf("invalid string store offset %v", off))
	}
	b, err := ss.mem.LoadUntil(uint(off), 0)
	if err != nil {
		panic(fmt.Sprintf("string store offset %v: %v", off, err))
	}
	return string(b)
}
