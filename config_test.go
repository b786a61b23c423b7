package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "gosecd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := parseConfig("gosecd", nil, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, defaultConfig, cfg)
	})

	t.Run("flags", func(t *testing.T) {
		cfg, err := parseConfig("gosecd", []string{"-mode", "asm", "-trace", "-timeout", "3s", "a.lisp", "b.lisp"}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "asm", cfg.Mode)
		assert.True(t, cfg.Trace)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
		assert.Equal(t, []string{"a.lisp", "b.lisp"}, cfg.Files)
	})

	t.Run("file", func(t *testing.T) {
		path := writeConfig(t, `
mode: compile
cells: 1000
strings: 2048
gc_log: true
timeout: 2s
trace_depth: 3
`)
		cfg, err := parseConfig("gosecd", []string{"-config", path, "-cells", "500", "prog.lisp"}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, Config{
			Mode:       "compile",
			Cells:      500,
			Strings:    2048,
			GCLog:      true,
			Timeout:    2 * time.Second,
			TraceDepth: 3,
			Files:      []string{"prog.lisp"},
		}, cfg)
	})

	t.Run("explicit flags override file", func(t *testing.T) {
		path := writeConfig(t, "trace: true\nmode: apply\n")
		cfg, err := parseConfig("gosecd", []string{"-config", path, "-trace=false"}, io.Discard)
		require.NoError(t, err)
		assert.False(t, cfg.Trace)
		assert.Equal(t, "apply", cfg.Mode)
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := parseConfig("gosecd", []string{"-mode", "jit"}, io.Discard)
		assert.Error(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		path := writeConfig(t, "heap_size: 12\n")
		_, err := parseConfig("gosecd", []string{"-config", path}, io.Discard)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := parseConfig("gosecd", []string{"-config", filepath.Join(t.TempDir(), "nope.yaml")}, io.Discard)
		assert.Error(t, err)
	})
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"eval", "APPLY", "Asm", "compile"} {
		_, err := ParseMode(name)
		assert.NoError(t, err, "mode %q", name)
	}
	mode, _ := ParseMode("EVAL")
	assert.Equal(t, ModeEval, mode)
}
