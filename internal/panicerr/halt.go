package panicerr

import "errors"

// Halt stops the current Recover-ed computation, causing Recover to return
// err. A nil err halts normally, and Recover returns nil.
func Halt(err error) {
	panic(haltError{err})
}

// HaltIf calls Halt only if err is non-nil.
func HaltIf(err error) {
	if err != nil {
		Halt(err)
	}
}

type haltError struct{ error }

func (he haltError) Error() string {
	if he.error != nil {
		return "halted: " + he.error.Error()
	}
	return "halted"
}

func (he haltError) Unwrap() error { return he.error }

// IsHalt returns true if err is a halt that escaped a Recover, e.g. because
// the halting code ran outside of one.
func IsHalt(err error) bool {
	var he haltError
	return errors.As(err, &he)
}
