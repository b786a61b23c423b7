package main

import (
	"context"
	"io"

	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/panicerr"
	"github.com/jcorbin/gosecd/internal/secd"
)

// New creates a runner; its heap and machine are created by the first Run.
func New(opts ...Option) *Runner {
	var r Runner
	Options(defaults...).apply(&r)
	Options(opts...).apply(&r)
	return &r
}

// Run reads expressions from the queued input until it ends, processing each
// according to the runner's Mode and printing any result. The first error
// stops the run, and is returned; io.EOF is not an error.
func (r *Runner) Run(ctx context.Context) error {
	err := panicerr.Recover("gosecd", func() error {
		return r.run(ctx)
	})
	if ferr := r.out.Flush(); err == nil {
		err = ferr
	}
	if r.dump != nil && r.h != nil {
		heapDumper{h: r.h, out: r.dump}.dump()
	}
	return err
}

func WithInput(rs ...io.Reader) Option        { return withInput(rs...) }
func WithOutput(w io.Writer) Option           { return withOutput(w) }
func WithErrOutput(w io.Writer) Option        { return withErrOutput(w) }
func WithTranscript(wc io.WriteCloser) Option { return withTranscript(wc) }
func WithDump(w io.Writer) Option             { return withDump(w) }
func WithCells(n int) Option                  { return withHeapOption(heap.WithCells(n)) }
func WithStringSpace(n int) Option            { return withHeapOption(heap.WithStringSpace(n)) }
func WithTraceDepth(n int) Option             { return withMachineOption(secd.WithTraceDepth(n)) }

func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }
func WithTracef(logfn func(mess string, args ...interface{})) Option {
	return withMachineOption(secd.WithLogf(logfn))
}
func WithGCLogf(logfn func(mess string, args ...interface{})) Option {
	return withHeapOption(heap.WithLogf(logfn))
}
