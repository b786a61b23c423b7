package secd

// Option configures a Machine under New.
type Option interface{ apply(m *Machine) }

// DefaultTraceDepth bounds how deeply nested register values are traced.
const DefaultTraceDepth = 6

var defaultOptions = Options(
	WithTraceDepth(DefaultTraceDepth),
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

// WithLogf sets a function to trace every executed instruction through,
// along with the machine registers.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return logfnOption(logfn) }

// WithTraceDepth bounds the nesting of register values printed by tracing;
// 0 prints them completely, cycles aside.
func WithTraceDepth(n int) Option { return traceDepthOption(n) }

type options []Option
type logfnOption func(mess string, args ...interface{})
type traceDepthOption int

func (opts options) apply(m *Machine) {
	for _, opt := range opts {
		opt.apply(m)
	}
}

func (logfn logfnOption) apply(m *Machine)  { m.logfn = logfn }
func (n traceDepthOption) apply(m *Machine) { m.traceDepth = int(n) }
