// Package logio provides the leveled line logger used by the command, along
// with an io.Writer that feeds lines into any printf-style log function.
package logio

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Logger implements a leveled logging facility around an output stream.
// Lines look like "LEVEL: message"; levels may be given a color, which is
// only applied when color output is enabled (see github.com/fatih/color).
type Logger struct {
	sync.Mutex
	output   io.Writer
	colors   map[string]*color.Color
	buf      bytes.Buffer
	exitCode int
}

// SetOutput sets the logger's output stream.
func (log *Logger) SetOutput(out io.Writer) {
	log.Lock()
	defer log.Unlock()
	log.output = out
}

// SetLevelColor sets a color to print a level's prefix in; a nil color clears
// it.
func (log *Logger) SetLevelColor(level string, c *color.Color) {
	log.Lock()
	defer log.Unlock()
	if c == nil {
		delete(log.colors, level)
		return
	}
	if log.colors == nil {
		log.colors = make(map[string]*color.Color)
	}
	log.colors[level] = c
}

// ExitCode returns a code to pass to os.Exit, facilitating "exit non-zero if
// any error log" semantics.
func (log *Logger) ExitCode() int {
	log.Lock()
	defer log.Unlock()
	return log.exitCode
}

// Leveledf returns a typical printf-style formatting function that logs
// messages with the given level.
func (log *Logger) Leveledf(level string) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) { log.Printf(level, mess, args...) }
}

// ErrorIf logs any non-nil error through Errorf.
func (log *Logger) ErrorIf(err error) {
	if err != nil {
		log.Errorf("%v", err)
	}
}

// Errorf is like `Printf("ERROR", ...)` but additionally retains state so that
// ExitCode() will return non-zero.
func (log *Logger) Errorf(mess string, args ...interface{}) {
	log.Lock()
	defer log.Unlock()
	if err := log.printf("ERROR", mess, args...); err != nil {
		log.reportError(err)
	}
	if log.exitCode == 0 {
		log.exitCode = 1
	}
}

// Printf prints a line to the output stream like "level: message...\n".
// Reports any io error as an "ERROR" level log, and retains similar state for ExitCode().
func (log *Logger) Printf(level, mess string, args ...interface{}) {
	log.Lock()
	defer log.Unlock()
	if err := log.printf(level, mess, args...); err != nil {
		log.reportError(err)
	}
}

func (log *Logger) printf(level, mess string, args ...interface{}) error {
	if log.output == nil {
		return nil
	}
	if level != "" {
		if c := log.colors[level]; c != nil {
			log.buf.WriteString(c.Sprint(level))
		} else {
			log.buf.WriteString(level)
		}
		log.buf.WriteString(": ")
	}
	if len(args) > 0 {
		fmt.Fprintf(&log.buf, mess, args...)
	} else {
		log.buf.WriteString(mess)
	}
	if b := log.buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		log.buf.WriteByte('\n')
	}
	_, err := log.buf.WriteTo(log.output)
	log.buf.Reset()
	return err
}

// reportError makes a best effort to log an output error, which then also
// determines the exit code.
func (log *Logger) reportError(err error) {
	log.printf("ERROR", "log output failed: %+v", err)
	log.exitCode = 2
}
