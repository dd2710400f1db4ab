package rigid2d

import (
	"errors"
	"fmt"
)

// Sentinel errors matching the taxonomy in the world's error-handling
// design: WrongState, InvalidArgument and LengthError. Wrap these with
// fmt.Errorf("...: %w", ErrX) and test with errors.Is.
var (
	// ErrWrongState is returned by any mutating world call attempted while
	// the world is locked (mid-Step).
	ErrWrongState = errors.New("rigid2d: world is locked")

	// ErrInvalidArgument is returned when a numeric parameter is NaN,
	// out of range, or a shape fails validation (e.g. vertex radius
	// outside engine limits).
	ErrInvalidArgument = errors.New("rigid2d: invalid argument")

	// ErrLengthError is returned when an operation would exceed a fixed
	// identifier-count maximum (MaxBodies, MaxFixtures, MaxContacts,
	// MaxJoints).
	ErrLengthError = errors.New("rigid2d: capacity exceeded")
)

func wrongStateErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrWrongState)...)
}

func invalidArgumentErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidArgument)...)
}

func lengthErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrLengthError)...)
}

// assertf panics on programmer-error invariant violations, matching the
// teacher's B2Assert usage: these signal a bug in this package or its
// caller, never a legitimate runtime condition, so they are not part of the
// error taxonomy above.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
