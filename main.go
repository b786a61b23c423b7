package main

import (
	"context"
	"os"

	"github.com/fatih/color"

	"github.com/jcorbin/gosecd/internal/logio"
)

func main() {
	ctx := context.Background()

	var log logio.Logger
	log.SetOutput(os.Stderr)
	log.SetLevelColor("ERROR", color.New(color.FgRed, color.Bold))
	log.SetLevelColor("TRACE", color.New(color.FgCyan))
	log.SetLevelColor("GC", color.New(color.FgYellow))

	cfg, err := parseConfig(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(log.ExitCode())
	}

	opts, err := cfg.options(&log)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(log.ExitCode())
	}
	r := New(opts...)

	if cfg.Timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if !cfg.Interactive || len(cfg.Files) > 0 {
		err = r.Run(ctx)
	}
	if err == nil && cfg.Interactive {
		err = r.Interact(ctx, cfg.History)
	}
	if err != nil {
		log.Errorf("%+v", err)
	}
	log.ErrorIf(r.Close())
	if code := log.ExitCode(); code != 0 {
		os.Exit(code)
	}
}

// options builds runner options from cfg, opening any files it names.
func (cfg Config) options(log *logio.Logger) ([]Option, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		mode,
		WithOutput(os.Stdout),
		WithErrOutput(os.Stderr),
		WithCells(cfg.Cells),
		WithStringSpace(cfg.Strings),
		WithTraceDepth(cfg.TraceDepth),
	}

	if len(cfg.Files) == 0 && !cfg.Interactive {
		opts = append(opts, WithInput(os.Stdin))
	}
	for _, name := range cfg.Files {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithInput(f))
	}

	if cfg.Transcript != "" {
		f, err := os.Create(cfg.Transcript)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithTranscript(f))
	}
	if cfg.Trace {
		opts = append(opts, WithLogf(log.Leveledf("DEBUG")), WithTracef(log.Leveledf("TRACE")))
	}
	if cfg.GCLog {
		opts = append(opts, WithGCLogf(log.Leveledf("GC")))
	}
	if cfg.Dump {
		opts = append(opts, WithDump(os.Stderr))
	}
	return opts, nil
}
