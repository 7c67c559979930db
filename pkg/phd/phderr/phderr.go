// Package phderr defines the structured error kinds raised by the core
// 11073-20601 PHD download path.
package phderr

import (
	"errors"
	"fmt"
)

// Kind classifies a core failure so callers can branch with errors.Is
// instead of matching error strings.
type Kind int

const (
	// DeviceNotFound means the descriptor returned by discovery no longer
	// matches an attached device at open time.
	DeviceNotFound Kind = iota
	// IO means a transport read/write/control call failed at the byte level.
	IO
	// Timeout means a transport call exceeded its deadline.
	Timeout
	// Transfer means a short write: fewer bytes were written than requested.
	Transfer
	// Parse means a received buffer could not be decoded into the expected
	// shape (for example, a configuration response with no PM-store object).
	Parse
	// Protocol means a received APDU violated the expected phase sequence.
	Protocol
)

func (k Kind) String() string {
	switch k {
	case DeviceNotFound:
		return "device not found"
	case IO:
		return "io"
	case Timeout:
		return "timeout"
	case Transfer:
		return "transfer"
	case Parse:
		return "parse"
	case Protocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is the structured error type raised by pkg/phd and internal/usbtransport.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("phd: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("phd: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error with no wrapped cause.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf("%s", msg)}
}

// Wrap constructs an *Error wrapping an underlying cause.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err, or any error it wraps, is a *Error of the given
// kind, so a Timeout raised by a transport stays visible after the session
// wraps it in an outer IO error.
func Is(err error, kind Kind) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
