package runeio

import (
	"io"
	"unicode/utf8"
)

// WriteEscapedRune writes a rune to the given writer:
// - control runes are written in caret form, e.g. "^[" for ESC
// - ASCII runes are written directly as bytes
// - all other runes are written in utf8 form
func WriteEscapedRune(w io.Writer, r rune) (n int, err error) {
	type runeWriter interface {
		WriteRune(r rune) (n int, err error)
	}
	if IsControl(r) {
		return io.WriteString(w, CaretForm(r))
	}
	if r < utf8.RuneSelf {
		if bw, ok := w.(io.ByteWriter); ok {
			return 1, bw.WriteByte(byte(r))
		}
		return w.Write([]byte{byte(r)})
	}
	if rw, ok := w.(runeWriter); ok {
		return rw.WriteRune(r)
	}
	if sw, ok := w.(io.StringWriter); ok {
		return sw.WriteString(string(r))
	}
	return w.Write([]byte(string(r)))
}

// WriteEscapedString writes a string using WriteEscapedRune for each rune.
func WriteEscapedString(w io.Writer, s string) (n int, err error) {
	for _, r := range s {
		m, err := WriteEscapedRune(w, r)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
