package types

import (
	"fmt"

	"github.com/juju/errors"
)

// ConfigError is fatal: malformed or missing display, duplicate name, unknown element type.
type ConfigError struct{ Msg string }

func (e ConfigError) Error() string { return "config: " + e.Msg }

func ConfigErrorf(format string, args ...interface{}) error {
	return errors.Trace(ConfigError{Msg: fmt.Sprintf(format, args...)})
}

// InputError is recoverable and shown to user as re-prompt.
type InputError struct{ Msg string }

func (e InputError) Error() string { return "input: " + e.Msg }

func InputErrorf(format string, args ...interface{}) error {
	return errors.Trace(InputError{Msg: fmt.Sprintf(format, args...)})
}

// HardwareError is collaborator failure or timeout.
type HardwareError struct {
	Device  string
	Timeout bool
	Err     error
}

func (e HardwareError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("hardware %s: timeout", e.Device)
	}
	return fmt.Sprintf("hardware %s: %v", e.Device, e.Err)
}

// VerificationError means the verification service is unreachable.
// Denied is not an error, see Verdict.
type VerificationError struct{ Err error }

func (e VerificationError) Error() string { return fmt.Sprintf("verification unreachable: %v", e.Err) }

func IsConfigError(err error) bool {
	_, ok := errors.Cause(err).(ConfigError)
	return ok
}

func IsInputError(err error) bool {
	_, ok := errors.Cause(err).(InputError)
	return ok
}

func IsHardwareError(err error) bool {
	_, ok := errors.Cause(err).(HardwareError)
	return ok
}

func IsVerificationError(err error) bool {
	_, ok := errors.Cause(err).(VerificationError)
	return ok
}
