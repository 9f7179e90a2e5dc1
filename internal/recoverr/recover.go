// Package recoverr turns panics into ordinary error returns at the package
// boundary of the jack, vm and hack compilers.
//
// The jack compiler panics on fatal errors (matching the teacher's style: a
// malformed program aborts immediately, there is no recovery); vm and hack
// return their errors as values and run under Run only as a guard. A Go
// library should never let a panic escape across a package boundary. Run
// bridges the two.
package recoverr

import "github.com/pkg/errors"

// Run calls f and converts any panic raised by f into a returned error.
// If f itself returns a non-nil error, that error is returned unchanged.
func Run(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errors.Errorf("%v", r)
		}
	}()
	return f()
}
