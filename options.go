package main

import (
	"io"

	"github.com/jcorbin/gosecd/internal/fileinput"
	"github.com/jcorbin/gosecd/internal/flushio"
	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/secd"
)

// Option configures a Runner under New.
type Option interface{ apply(r *Runner) }

var defaults = []Option{
	withOutput(io.Discard),
	withErrOutput(io.Discard),
	ModeEval,
}

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

type options []Option

func (opts options) apply(r *Runner) {
	for _, opt := range opts {
		opt.apply(r)
	}
}

type withLogfn func(mess string, args ...interface{})
type inputOption []io.Reader
type outputOption struct{ io.Writer }
type errOutputOption struct{ io.Writer }
type transcriptOption struct{ io.WriteCloser }
type dumpOption struct{ io.Writer }
type heapOption struct{ heap.Option }
type machineOption struct{ secd.Option }

func withInput(rs ...io.Reader) inputOption           { return inputOption(rs) }
func withOutput(w io.Writer) outputOption             { return outputOption{w} }
func withErrOutput(w io.Writer) errOutputOption       { return errOutputOption{w} }
func withTranscript(wc io.WriteCloser) Option         { return transcriptOption{wc} }
func withDump(w io.Writer) dumpOption                 { return dumpOption{w} }
func withHeapOption(opt heap.Option) heapOption       { return heapOption{opt} }
func withMachineOption(opt secd.Option) machineOption { return machineOption{opt} }

func (logfn withLogfn) apply(r *Runner) { r.logfn = logfn }

func (mode Mode) apply(r *Runner) { r.mode = mode }

func (rs inputOption) apply(r *Runner) {
	if r.in == nil {
		r.in = fileinput.New()
	}
	r.in.Push(rs...)
}

func (o outputOption) apply(r *Runner) {
	if r.out != nil {
		r.out.Flush()
	}
	r.out = flushio.NewWriteFlusher(o.Writer)
}

func (o errOutputOption) apply(r *Runner) {
	r.errOut = o.Writer
}

func (o transcriptOption) apply(r *Runner) {
	wfc := flushio.NewWriteFlushCloser(o.WriteCloser)
	r.out = flushio.WriteFlushers(r.out, wfc)
	r.closers = append(r.closers, wfc)
}

func (o dumpOption) apply(r *Runner) { r.dump = o.Writer }

func (o heapOption) apply(r *Runner) {
	r.heapOpts = append(r.heapOpts, o.Option)
}

func (o machineOption) apply(r *Runner) {
	r.machineOpts = append(r.machineOpts, o.Option)
}
