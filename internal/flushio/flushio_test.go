package flushio_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gosecd/internal/flushio"
)

// unbuffered hides any buffer methods, forcing NewWriteFlusher to buffer.
type unbuffered struct{ w io.Writer }

func (ub unbuffered) Write(p []byte) (int, error) { return ub.w.Write(p) }

type closeRecorder struct {
	unbuffered
	closed bool
	err    error
}

func (cr *closeRecorder) Close() error {
	cr.closed = true
	return cr.err
}

func TestNewWriteFlusher(t *testing.T) {
	var buf bytes.Buffer
	wf := flushio.NewWriteFlusher(&buf)
	fmt.Fprint(wf, "direct")
	assert.Equal(t, "direct", buf.String(), "buffers are written through")

	var sb strings.Builder
	wf = flushio.NewWriteFlusher(unbuffered{&sb})
	fmt.Fprint(wf, "held")
	assert.Equal(t, "", sb.String(), "other writers are buffered")
	require.NoError(t, wf.Flush())
	assert.Equal(t, "held", sb.String())

	assert.Same(t, wf, flushio.NewWriteFlusher(wf), "write flushers are reused")
}

func TestWriteFlushers(t *testing.T) {
	var a, b strings.Builder
	wa := flushio.NewWriteFlusher(unbuffered{&a})
	wb := flushio.NewWriteFlusher(unbuffered{&b})

	assert.Nil(t, flushio.WriteFlushers())
	assert.Equal(t, wa, flushio.WriteFlushers(nil, wa))

	wf := flushio.WriteFlushers(wa, flushio.WriteFlushers(wb, nil))
	fmt.Fprint(wf, "(7)\n")
	require.NoError(t, wf.Flush())
	assert.Equal(t, "(7)\n", a.String())
	assert.Equal(t, "(7)\n", b.String())
}

func TestWriteFlushCloser(t *testing.T) {
	var sb strings.Builder
	cr := &closeRecorder{unbuffered: unbuffered{&sb}}
	wfc := flushio.NewWriteFlushCloser(cr)
	fmt.Fprint(wfc, "transcript")
	assert.Equal(t, "", sb.String())
	require.NoError(t, wfc.Close())
	assert.True(t, cr.closed)
	assert.Equal(t, "transcript", sb.String())

	cr = &closeRecorder{unbuffered: unbuffered{&sb}, err: errors.New("close failed")}
	assert.EqualError(t, flushio.NewWriteFlushCloser(cr).Close(), "close failed")
}
