package flushio

import "io"

// WriteFlushers combines any number of WriteFlusher-s into a single one that
// writes into and flushes all of them, as when output is also recorded to a
// transcript. Nil arguments are skipped, and nested combinations flattened.
// Every member is written and flushed even after one of them fails; the
// first error is returned.
func WriteFlushers(wfs ...WriteFlusher) WriteFlusher {
	var tee teeFlusher
	for _, wf := range wfs {
		switch impl := wf.(type) {
		case nil:
		case teeFlusher:
			tee = append(tee, impl...)
		default:
			tee = append(tee, wf)
		}
	}
	switch len(tee) {
	case 0:
		return nil
	case 1:
		return tee[0]
	}
	return tee
}

type teeFlusher []WriteFlusher

func (tee teeFlusher) Write(p []byte) (int, error) {
	var err error
	for _, wf := range tee {
		n, werr := wf.Write(p)
		if werr == nil && n != len(p) {
			werr = io.ErrShortWrite
		}
		if err == nil {
			err = werr
		}
	}
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (tee teeFlusher) Flush() (err error) {
	for _, wf := range tee {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}
