package heap

// Defaults for heap sizing.
const (
	DefaultCells       = 64 * 1024
	DefaultStringSpace = 64 * 1024
)

// Option configures a Heap under New.
type Option interface{ apply(h *Heap) }

var defaultOptions = Options(
	WithCells(DefaultCells),
	WithStringSpace(DefaultStringSpace),
)

// Options combines any number of options into one, applied in order.
func Options(opts ...Option) Option {
	var all options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			all = append(all, impl...)
		default:
			all = append(all, opt)
		}
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

// WithCells sets the cell capacity, counting the reserved NIL, T and F cells;
// it is raised to leave at least one allocatable cell.
func WithCells(n int) Option { return cellsOption(n) }

// WithStringSpace sets the string store size in bytes, counting a NUL
// terminator per name; it is raised to fit the reserved names.
func WithStringSpace(n int) Option { return stringSpaceOption(n) }

// WithLogf sets a function to log garbage collections through.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return logfnOption(logfn) }

type options []Option
type cellsOption int
type stringSpaceOption int
type logfnOption func(mess string, args ...interface{})

func (opts options) apply(h *Heap) {
	for _, opt := range opts {
		opt.apply(h)
	}
}

func (n cellsOption) apply(h *Heap) {
	if n < reserved+1 {
		n = reserved + 1
	}
	h.cells = make([]cell, n)
}

func (n stringSpaceOption) apply(h *Heap) {
	const minSpace = stringSpaceOption(len("NIL\x00T\x00F\x00"))
	if n < minSpace {
		n = minSpace
	}
	h.strs.mem.Limit = uint(n)
}

func (logfn logfnOption) apply(h *Heap) {
	h.logfn = logfn
}
