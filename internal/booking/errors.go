// Package booking implements the seat reservation and order settlement
// engine: availability checking under row locks, order initiation, the
// order status state machine and idempotent settlement notifications.
// It talks to the relational store through the Store interface and owns
// no authoritative in-process state.
package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies engine failures so the transport layer can map them to
// status codes without inspecting messages.
type Kind int

const (
	// KindInvalidArgument marks malformed or missing caller input. Not
	// retriable as-is.
	KindInvalidArgument Kind = iota + 1
	// KindNotFound marks a referenced schedule, seat or order that does
	// not exist.
	KindNotFound
	// KindConflict marks seats already held, or a contradictory
	// re-transition of a terminal order.
	KindConflict
	// KindInternal marks persistence or infrastructure faults.
	KindInternal
)

// String returns the lowercase taxonomy name used in responses and logs.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// Error is the typed failure returned by engine operations. SeatIDs is
// populated on seat conflicts so callers can re-render seat selection
// instead of failing opaquely.
type Error struct {
	Kind    Kind
	Msg     string
	SeatIDs []uint64
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if len(e.SeatIDs) > 0 {
		fmt.Fprintf(&b, " (seats %v)", e.SeatIDs)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

func invalidArgumentf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func conflictSeats(seatIDs []uint64) *Error {
	return &Error{Kind: KindConflict, Msg: "seats unavailable", SeatIDs: seatIDs}
}

func conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf extracts the taxonomy kind from err. Errors that did not
// originate in the engine are classified as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ConflictSeats returns the unavailable seat ids attached to err, if any.
func ConflictSeats(err error) []uint64 {
	var e *Error
	if errors.As(err, &e) {
		return e.SeatIDs
	}
	return nil
}
