// Package fileinput reads runes sequentially from a queue of named input
// streams, tracking the location of each rune for error reporting.
package fileinput

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jcorbin/gosecd/internal/runeio"
)

// Location names a position within an Input stream.
type Location struct {
	Name   string
	Line   int
	Column int
}

// Line combines a Location along with a bytes.Buffer for handling it.
type Line struct {
	Location
	bytes.Buffer
}

func (loc Location) String() string {
	if loc.Column > 0 {
		return fmt.Sprintf("%v:%v:%v", loc.Name, loc.Line, loc.Column)
	}
	return fmt.Sprintf("%v:%v", loc.Name, loc.Line)
}

func (il Line) String() string { return fmt.Sprintf("%v %q", il.Location, il.Buffer.String()) }

// Input implements sequential rune reading through a Queue of one or more
// input streams. Both the current and last scanned lines are tracked to
// facilitate user feedback. One rune may be pushed back with UnreadRune.
type Input struct {
	rr    io.RuneReader
	Queue []io.Reader
	Last  Line
	Scan  Line

	last      rune
	lastLoc   Location
	unread    bool
	exhausted bool
}

// New creates an Input reading each of the given streams in turn.
func New(rs ...io.Reader) *Input {
	return &Input{Queue: rs}
}

// Push appends more streams to the end of the input queue.
func (in *Input) Push(rs ...io.Reader) {
	in.Queue = append(in.Queue, rs...)
	in.exhausted = false
}

// Location returns the location of the most recently read rune.
func (in *Input) Location() Location {
	return in.lastLoc
}

// ReadRune reads one rune from the current input stream, appending it into the
// current Scan line, and rolling Scan over to Last after line feed. Reading
// continues into the next queued stream at the end of each one; io.EOF is
// only returned once the queue is empty.
func (in *Input) ReadRune() (rune, int, error) {
	if in.unread {
		in.unread = false
		return in.last, len(string(in.last)), nil
	}

	for {
		if in.rr == nil && !in.nextIn() {
			in.exhausted = true
			return 0, 0, io.EOF
		}

		r, n, err := in.rr.ReadRune()
		if n > 0 {
			in.Scan.Column++
			in.lastLoc = in.Scan.Location
			in.last = r
			if r == '\n' {
				in.nextLine()
			} else {
				in.Scan.WriteRune(r)
			}
			return r, n, nil
		}
		if err == io.EOF {
			in.closeIn()
			continue
		}
		if err != nil {
			return 0, 0, err
		}
	}
}

// UnreadRune pushes back the last rune read, which the next ReadRune returns
// again. Only one rune may be pushed back, and not after io.EOF.
func (in *Input) UnreadRune() error {
	if in.unread || in.exhausted || in.lastLoc.Line == 0 {
		return fmt.Errorf("fileinput: invalid UnreadRune")
	}
	in.unread = true
	return nil
}

func (in *Input) nextLine() {
	in.Last.Reset()
	in.Last.Location = in.Scan.Location
	in.Last.Write(in.Scan.Bytes())
	in.Scan.Reset()
	in.Scan.Line++
	in.Scan.Column = 0
}

func (in *Input) closeIn() {
	if in.Scan.Len() > 0 {
		in.nextLine()
	}
	if cl, ok := in.rr.(io.Closer); ok {
		cl.Close()
	}
	in.rr = nil
}

func (in *Input) nextIn() bool {
	if len(in.Queue) > 0 {
		r := in.Queue[0]
		in.Queue = in.Queue[1:]
		in.rr = runeio.NewReader(r)
		in.Scan.Reset()
		in.Scan.Name = nameOf(r)
		in.Scan.Line = 1
		in.Scan.Column = 0
	}
	return in.rr != nil
}

// Close closes any remaining streams, current and queued, that are io.Closers.
func (in *Input) Close() (err error) {
	if cl, ok := in.rr.(io.Closer); ok {
		err = cl.Close()
	}
	in.rr = nil
	for _, r := range in.Queue {
		if cl, ok := r.(io.Closer); ok {
			if cerr := cl.Close(); err == nil {
				err = cerr
			}
		}
	}
	in.Queue = nil
	return err
}

// NamedReader attaches a name to a reader, for locations.
func NamedReader(name string, r io.Reader) io.Reader {
	return namedReader{r, name}
}

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
