package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/jcorbin/gosecd/internal/fault"
)

const (
	prompt         = "secd> "
	continuePrompt = "....> "
)

// prompter reads lines of interactive input; it is implemented by
// *liner.State.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Interact runs a read-eval-print loop on the terminal, with line editing and
// history, until end of input. Input continues over several lines until it
// forms complete expressions. Errors are reported in red, and do not end the
// session.
//
// If historyPath is not empty, history is loaded from and saved to that file.
func (r *Runner) Interact(ctx context.Context, historyPath string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	err := r.interact(ctx, line)

	if historyPath != "" {
		if f, herr := os.Create(historyPath); herr == nil {
			line.WriteHistory(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		} else if err == nil {
			err = herr
		}
	}
	return err
}

func (r *Runner) interact(ctx context.Context, p prompter) error {
	red := color.New(color.FgRed)
	var entry strings.Builder
	for n := 1; ; {
		pr := prompt
		if entry.Len() > 0 {
			pr = continuePrompt
		}
		text, err := p.Prompt(pr)
		if errors.Is(err, liner.ErrPromptAborted) {
			entry.Reset()
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		entry.WriteString(text)
		entry.WriteByte('\n')
		src := entry.String()
		if strings.TrimSpace(src) == "" {
			entry.Reset()
			continue
		}

		err = r.evalSource(ctx, fmt.Sprintf("<repl %v>", n), src)
		if fault.Is(err, fault.UnexpectedEOF) {
			continue
		}
		p.AppendHistory(strings.TrimSpace(src))
		entry.Reset()
		n++

		if err != nil {
			r.logf("!", "%v", err)
			red.Fprintf(r.errOut, "ERROR: %v\n", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
