// Package panicerr converts abnormal goroutine exits into error values.
//
// Code deep inside the heap, compiler or machine halts by panicking with a
// halt error (see Halt); API boundaries run that code under Recover, which
// hands the halt error back as a plain return value. Any other panic is a
// bug, and comes back wrapped with its stack trace.
package panicerr

// Recover runs f in a new goroutine, waiting for it to finish, and returns
// its error. A Halt inside f returns the halted error as is; any other panic
// or a runtime.Goexit call is converted into a non-nil error.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExitError(name, errch)
		defer recoverPanicError(name, errch)
		errch <- f()
	}()
	return <-errch
}
