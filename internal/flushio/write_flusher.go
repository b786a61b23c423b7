// Package flushio provides buffered output that is explicitly flushed, as
// the command does after each printed result.
package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// NewWriteFlusher creates a new flushable writer: if the given writer is a
// buffer, a wrapping with a noop Flush is returned; otherwise, unless the
// original writer is a WriteFlusher, a new bufio.Writer is returned.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	if w == io.Discard {
		return nopFlusher{w}
	}

	if wf, is := w.(WriteFlusher); is {
		return wf
	}

	// in memory buffers, as implemented by types like bytes.Buffer and
	// strings.Builder, do not need to be flushed
	type buffer interface {
		io.Writer
		Len() int
		Grow(n int)
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}

	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// WriteFlushCloser is a WriteFlusher whose underlying stream must also be
// closed, like a transcript file.
type WriteFlushCloser interface {
	WriteFlusher
	io.Closer
}

// NewWriteFlushCloser buffers wc with NewWriteFlusher; Close flushes before
// closing wc.
func NewWriteFlushCloser(wc io.WriteCloser) WriteFlushCloser {
	return flushCloser{NewWriteFlusher(wc), wc}
}

type flushCloser struct {
	WriteFlusher
	cl io.Closer
}

func (fc flushCloser) Close() error {
	err := fc.Flush()
	if cerr := fc.cl.Close(); err == nil {
		err = cerr
	}
	return err
}
