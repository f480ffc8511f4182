package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ErrorKind enumerates the taxonomy from spec.md §7. Every error that
// crosses a component boundary is classified as one of these so the caller
// can decide whether to retry, escalate, or terminate without string
// matching.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTransportRetryable
	KindSlotSkipped
	KindUnsupportedFork
	KindStateDeserialization
	KindMalformedExitData
	KindProofInternalError
	KindEmulationFailed
	KindGasLimitExceeded
	KindHighGasFee
	KindSendFailed
	KindNoSigner
	KindUnknownModule
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransportRetryable:
		return "TransportRetryable"
	case KindSlotSkipped:
		return "SlotSkipped"
	case KindUnsupportedFork:
		return "UnsupportedFork"
	case KindStateDeserialization:
		return "StateDeserialization"
	case KindMalformedExitData:
		return "MalformedExitData"
	case KindProofInternalError:
		return "ProofInternalError"
	case KindEmulationFailed:
		return "EmulationFailed"
	case KindGasLimitExceeded:
		return "GasLimitExceeded"
	case KindHighGasFee:
		return "HighGasFee"
	case KindSendFailed:
		return "SendFailed"
	case KindNoSigner:
		return "NoSigner"
	case KindUnknownModule:
		return "UnknownModule"
	default:
		return "Unknown"
	}
}

// Error is the core's typed error. It carries a synthetic ID assigned on
// first emission and a Logged flag so that the one-shot logging discipline
// described in spec.md §4.7/§9 can be implemented by callers: once Logged is
// true, Error() collapses to the ID and kind, so re-logging the same error as it
// bubbles through layers does not repeat the full payload.
type Error struct {
	Kind   ErrorKind
	ID     string
	Logged bool
	Cause  error

	// Context carries kind-specific data (e.g. GasLimitExceeded's
	// estimated/required numbers) for the first log line.
	Context map[string]any
}

// New constructs an Error of the given kind wrapping cause. The ID is
// assigned lazily on first Emit, not at construction, so errors built but
// never logged (e.g. discarded in a retry loop) don't burn randomness.
func New(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func Newf(kind ErrorKind, format string, args ...any) *Error {
	return New(kind, fmt.Errorf(format, args...))
}

// WithContext attaches structured fields used by the first log line.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any, 2)
	}
	e.Context[key] = value
	return e
}

// Emit assigns an ID on first call and marks the error logged; it returns
// whether this is the first emission (the caller should log the full
// payload) or a repeat (the caller should log only the ID).
func (e *Error) Emit() (id string, first bool) {
	if e.ID == "" {
		e.ID = newErrorID()
	}
	first = !e.Logged
	e.Logged = true
	return e.ID, first
}

func (e *Error) Error() string {
	if e.Logged && e.ID != "" {
		return fmt.Sprintf("[%s] %s", e.ID, e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func newErrorID() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// IsKind reports whether err is a *Error of the given kind, unwrapping as
// needed.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	for err != nil {
		if ce, ok := err.(*Error); ok {
			e = ce
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
