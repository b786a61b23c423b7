package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/gosecd/internal/fault"
	"github.com/jcorbin/gosecd/internal/fileinput"
	"github.com/jcorbin/gosecd/internal/flushio"
	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/panicerr"
	"github.com/jcorbin/gosecd/internal/secd"
	"github.com/jcorbin/gosecd/internal/sexpr"
)

// Runner reads expressions and runs them on an SECD machine.
type Runner struct {
	logging
	in      *fileinput.Input
	out     flushio.WriteFlusher
	errOut  io.Writer
	dump    io.Writer
	closers []io.Closer

	mode        Mode
	heapOpts    []heap.Option
	machineOpts []secd.Option

	h  *heap.Heap
	m  *secd.Machine
	rd *sexpr.Reader
}

// Mode selects what a Runner does with each expression it reads.
type Mode string

// Modes of operation.
const (
	// ModeEval compiles each expression and prints its value.
	ModeEval Mode = "eval"

	// ModeApply reads pairs of a function expression and an argument list,
	// printing the result of applying the one to the other.
	ModeApply Mode = "apply"

	// ModeAsm reads pairs of an SECD code listing and an argument list,
	// printing the result of running the assembled code on them.
	ModeAsm Mode = "asm"

	// ModeCompile prints the code listing compiled from each expression.
	ModeCompile Mode = "compile"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch mode := Mode(strings.ToLower(s)); mode {
	case ModeEval, ModeApply, ModeAsm, ModeCompile:
		return mode, nil
	}
	return "", fmt.Errorf("invalid mode %q, must be one of eval, apply, asm or compile", s)
}

// arity returns how many expressions make up one unit of input.
func (mode Mode) arity() int {
	if mode == ModeApply || mode == ModeAsm {
		return 2
	}
	return 1
}

// Close releases the machine and closes any transcript.
func (r *Runner) Close() (err error) {
	if r.m != nil {
		r.m.Close()
	}
	if r.in != nil {
		err = r.in.Close()
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		if cerr := r.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	r.closers = nil
	return err
}

func (r *Runner) init() {
	if r.h == nil {
		r.h = heap.New(r.heapOpts...)
		r.m = secd.New(r.h, r.machineOpts...)
	}
	if r.in == nil {
		r.in = fileinput.New()
	}
	if r.rd == nil {
		r.rd = sexpr.NewReader(r.h, r.in)
	}
}

func (r *Runner) run(ctx context.Context) error {
	r.init()
	for {
		if err := r.next(ctx); errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// next reads and processes one unit of input.
func (r *Runner) next(ctx context.Context) error {
	release := r.h.Hold()
	defer release()

	x := make([]heap.Cell, r.mode.arity())
	for i := range x {
		c, err := r.rd.Read()
		if i > 0 && errors.Is(err, io.EOF) {
			return fault.UnexpectedEOF.New("%v mode expects an argument list after %v",
				r.mode, sexpr.String(r.h, x[0]))
		}
		if err != nil {
			return err
		}
		x[i] = c
	}
	return r.process(ctx, x)
}

// evalSource reads and processes all of src, as one REPL entry. Nothing is
// processed unless all of src reads as complete units; incomplete input
// returns a fault.UnexpectedEOF error.
func (r *Runner) evalSource(ctx context.Context, name, src string) error {
	return panicerr.Recover("gosecd", func() error {
		r.init()
		release := r.h.Hold()
		defer release()

		in := fileinput.New(fileinput.NamedReader(name, strings.NewReader(src)))
		rd := sexpr.NewReader(r.h, in)
		var all []heap.Cell
		for {
			c, err := rd.Read()
			if errors.Is(err, io.EOF) {
				break
			} else if err != nil {
				return err
			}
			all = append(all, c)
		}
		if n := r.mode.arity(); len(all)%n != 0 {
			return fault.UnexpectedEOF.New("%v mode expects an argument list", r.mode)
		}

		for n := r.mode.arity(); len(all) > 0; all = all[n:] {
			if err := r.process(ctx, all[:n]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Runner) process(ctx context.Context, x []heap.Cell) error {
	h := r.h
	r.logf(">", "%v %v", r.mode, sexpr.Printer{MaxDepth: 4}.String(h, x[0]))

	var (
		code heap.Cell
		args = heap.Nil
		err  error
	)
	switch r.mode {
	case ModeEval, ModeCompile:
		code, err = secd.Compile(h, x[0])
	case ModeApply:
		code, err = secd.CompileProgram(h, x[0])
		args = x[1]
	case ModeAsm:
		code, err = secd.Assemble(h, x[0])
		args = x[1]
	default:
		return fmt.Errorf("invalid mode %q", r.mode)
	}
	if err != nil {
		return err
	}

	if r.mode == ModeCompile {
		if err := secd.WriteCode(r.out, h, code); err != nil {
			return err
		}
		return r.endLine()
	}

	res, err := r.m.Execute(ctx, code, args)
	r.logf("<", "%v steps, %v", r.m.Steps(), h)
	if err != nil {
		return err
	}
	if err := sexpr.Fprint(r.out, h, res); err != nil {
		return err
	}
	return r.endLine()
}

func (r *Runner) endLine() error {
	if _, err := io.WriteString(r.out, "\n"); err != nil {
		return err
	}
	return r.out.Flush()
}

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		mark = strings.Repeat(mark[:1], n) + mark
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
