// gen_expects generates functional wrappers for runnerTestCase builder
// methods, so that tests may pass them to runnerTestCase.apply:
//
//	go run scripts/gen_expects.go -- runner_test.go runner_expects_test.go
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"regexp"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

type namedReader interface {
	io.ReadCloser
	Name() string
}

var (
	in  namedReader    = os.Stdin
	out io.WriteCloser = os.Stdout
)

func parseFlags() {
	flag.Parse()

	args := flag.Args()

	if len(args) > 0 {
		name := args[0]
		f, err := os.Open(name)
		if err != nil {
			log.Fatalf("failed to open %v: %v", name, err)
		}
		args = args[1:]
		in = f
	}

	if len(args) > 0 {
		name := args[0]
		f, err := os.Create(name)
		if err != nil {
			log.Fatalf("failed to create %v: %v", name, err)
		}
		out = f
	}
}

func main() {
	ctx := context.Background()
	parseFlags()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	ready := make(chan struct{})

	eg.Go(func() error {
		gofmt := exec.CommandContext(ctx, "goimports")
		fmtPipe, err := gofmt.StdinPipe()
		if err != nil {
			return err
		}

		defer out.Close()
		gofmt.Stdout = out
		gofmt.Stderr = os.Stderr

		out = fmtPipe

		close(ready)
		if err := gofmt.Run(); err != nil {
			return fmt.Errorf("goimports run failed: %w", err)
		}
		return nil
	})

	eg.Go(func() (rerr error) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ready:
		}

		defer func() {
			if cerr := in.Close(); rerr == nil {
				rerr = cerr
			}
			if cerr := out.Close(); rerr == nil {
				rerr = cerr
			}
		}()

		return run(ctx)
	})

	if err := eg.Wait(); err != nil {
		log.Fatalln(err)
	}
}

var builderMethod = regexp.MustCompile(`^func \(rt runnerTestCase\) (expect|with)(.+?)\((.*?)\) runnerTestCase`)

func run(ctx context.Context) error {
	var buf bytes.Buffer
	buf.Grow(1024)
	buf.WriteString("package main\n\n")

	buf.WriteString("// @generated from ")
	buf.WriteString(in.Name())
	buf.WriteString("\n\n")

	if args := flag.Args(); len(args) >= 2 {
		buf.WriteString("//go:generate go run scripts/gen_expects.go --")
		for _, arg := range args {
			buf.WriteByte(' ')
			buf.WriteString(arg)
		}
		buf.WriteString("\n\n")
	}

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if match := builderMethod.FindSubmatch(sc.Bytes()); len(match) > 0 {
			writeWrapper(&buf, match[1], match[2], match[3])
		}

		if buf.Len() > 0 {
			if _, err := buf.WriteTo(out); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return sc.Err()
}

// writeWrapper writes a function like expectRunnerOutput(output string)
// returning a closure that calls rt.expectOutput(output).
func writeWrapper(buf *bytes.Buffer, baseName, whatName, params []byte) {
	buf.WriteString("func ")
	buf.Write(baseName)
	buf.WriteString("Runner")
	buf.Write(whatName)
	buf.WriteString("(")
	buf.Write(params)
	buf.WriteString(") func(runnerTestCase) runnerTestCase {\n")
	buf.WriteString("  return func(rt runnerTestCase) runnerTestCase {\n")
	buf.WriteString("    return rt.")
	buf.Write(baseName)
	buf.Write(whatName)
	buf.WriteString("(")

	if len(bytes.TrimSpace(params)) > 0 {
		for i, part := range bytes.Split(params, []byte(",")) {
			if i > 0 {
				buf.WriteString(", ")
			}
			fields := bytes.Fields(bytes.TrimSpace(part))
			buf.Write(fields[0])
			if len(fields) > 1 && bytes.HasPrefix(fields[1], []byte("...")) {
				buf.WriteString("...")
			}
		}
	}

	buf.WriteString(")\n")
	buf.WriteString("  }\n")
	buf.WriteString("}\n\n")
}
