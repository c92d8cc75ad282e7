package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every error surfaced by the analysis packages.
type ErrorKind int

const (
	// KindIO marks a failed read of the underlying PCM stream.
	KindIO ErrorKind = iota + 1
	// KindInvalidConfiguration marks settings rejected before analysis starts.
	KindInvalidConfiguration
	// KindSampleRateMismatch marks a comparison of sequences analyzed at
	// different sample rates.
	KindSampleRateMismatch
	// KindAnalysisFailed wraps any lower-level failure at the scoring entry point.
	KindAnalysisFailed
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrIO                   = errors.New("io error")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrSampleRateMismatch   = errors.New("sample rate mismatch")
	ErrAnalysisFailed       = errors.New("analysis failed")
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInvalidConfiguration:
		return "invalid configuration"
	case KindSampleRateMismatch:
		return "sample rate mismatch"
	case KindAnalysisFailed:
		return "analysis failed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindInvalidConfiguration:
		return ErrInvalidConfiguration
	case KindSampleRateMismatch:
		return ErrSampleRateMismatch
	case KindAnalysisFailed:
		return ErrAnalysisFailed
	default:
		return nil
	}
}

// Error is the tagged error type. Op names the failing operation and Err
// carries the cause, which may itself be an *Error.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError returns an *Error of the given kind wrapping err.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf returns an *Error whose cause is formatted from format and args.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of the outermost *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
