package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jcorbin/gosecd/internal/heap"
	"github.com/jcorbin/gosecd/internal/secd"
)

// Config holds every setting of the command. It may be loaded from a YAML
// file given by -config; flags set on the command line take precedence over
// the file.
type Config struct {
	Mode        string        `yaml:"mode"`
	Cells       int           `yaml:"cells"`
	Strings     int           `yaml:"strings"`
	Trace       bool          `yaml:"trace"`
	TraceDepth  int           `yaml:"trace_depth"`
	GCLog       bool          `yaml:"gc_log"`
	Timeout     time.Duration `yaml:"timeout"`
	Dump        bool          `yaml:"dump"`
	Transcript  string        `yaml:"transcript"`
	Interactive bool          `yaml:"interactive"`
	History     string        `yaml:"history"`

	Files []string `yaml:"-"`
}

var defaultConfig = Config{
	Mode:       string(ModeEval),
	Cells:      heap.DefaultCells,
	Strings:    heap.DefaultStringSpace,
	TraceDepth: secd.DefaultTraceDepth,
}

// parseConfig parses command line arguments, loading any -config file first.
func parseConfig(name string, args []string, errOut io.Writer) (Config, error) {
	var (
		cfg        = defaultConfig
		flagCfg    = defaultConfig
		configPath string
	)

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&configPath, "config", "", "load settings from a YAML file")
	fs.StringVar(&flagCfg.Mode, "mode", flagCfg.Mode, "what to do with each expression: eval, apply, asm or compile")
	fs.IntVar(&flagCfg.Cells, "cells", flagCfg.Cells, "heap capacity in cells")
	fs.IntVar(&flagCfg.Strings, "strings", flagCfg.Strings, "string store capacity in bytes")
	fs.BoolVar(&flagCfg.Trace, "trace", flagCfg.Trace, "enable machine trace logging")
	fs.IntVar(&flagCfg.TraceDepth, "trace-depth", flagCfg.TraceDepth, "nesting depth of traced register values, 0 for unlimited")
	fs.BoolVar(&flagCfg.GCLog, "gc-log", flagCfg.GCLog, "log garbage collections")
	fs.DurationVar(&flagCfg.Timeout, "timeout", flagCfg.Timeout, "specify a time limit")
	fs.BoolVar(&flagCfg.Dump, "dump", flagCfg.Dump, "dump the heap after running")
	fs.StringVar(&flagCfg.Transcript, "transcript", flagCfg.Transcript, "also write output to a file")
	fs.BoolVar(&flagCfg.Interactive, "i", flagCfg.Interactive, "run an interactive session")
	fs.StringVar(&flagCfg.History, "history", flagCfg.History, "interactive session history file")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if configPath != "" {
		if err := cfg.load(configPath); err != nil {
			return cfg, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = flagCfg.Mode
		case "cells":
			cfg.Cells = flagCfg.Cells
		case "strings":
			cfg.Strings = flagCfg.Strings
		case "trace":
			cfg.Trace = flagCfg.Trace
		case "trace-depth":
			cfg.TraceDepth = flagCfg.TraceDepth
		case "gc-log":
			cfg.GCLog = flagCfg.GCLog
		case "timeout":
			cfg.Timeout = flagCfg.Timeout
		case "dump":
			cfg.Dump = flagCfg.Dump
		case "transcript":
			cfg.Transcript = flagCfg.Transcript
		case "i":
			cfg.Interactive = flagCfg.Interactive
		case "history":
			cfg.History = flagCfg.History
		}
	})
	cfg.Files = fs.Args()

	if _, err := ParseMode(cfg.Mode); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg *Config) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("invalid config %v: %w", path, err)
	}
	return nil
}
