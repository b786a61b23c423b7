package main

// @generated from runner_test.go

//go:generate go run scripts/gen_expects.go -- runner_test.go runner_expects_test.go

import (
	"time"

	"github.com/joomcode/errorx"
)

func withRunnerOptions(opts ...Option) func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.withOptions(opts...)
	}
}

func withRunnerMode(mode Mode) func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.withMode(mode)
	}
}

func withRunnerCells(n int) func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.withCells(n)
	}
}

func withRunnerInput(input string) func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.withInput(input)
	}
}

func withRunnerTimeout(timeout time.Duration) func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.withTimeout(timeout)
	}
}

func expectRunnerError(typ *errorx.Type) func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.expectError(typ)
	}
}

func expectRunnerOutput(output string) func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.expectOutput(output)
	}
}

func expectRunnerTranscript(output string) func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.expectTranscript(output)
	}
}

func expectRunnerTrace(trace ...string) func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.expectTrace(trace...)
	}
}

func expectRunnerCollections() func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.expectCollections()
	}
}

func expectRunnerDump(dump string) func(runnerTestCase) runnerTestCase {
	return func(rt runnerTestCase) runnerTestCase {
		return rt.expectDump(dump)
	}
}
