package etlerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork    Kind = "NETWORK_FAILURE"
	KindParse      Kind = "PARSE_FAILURE"
	KindValidation Kind = "VALIDATION_FAILURE"
	KindSink       Kind = "SINK_FAILURE"
	KindInternal   Kind = "INTERNAL_FAILURE"
)

// Error tags a failure with the pipeline stage it belongs to. None of these
// abort a run on their own; the caller decides whether to skip or degrade.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func Network(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

func Parse(op string, err error) *Error {
	return &Error{Kind: KindParse, Op: op, Err: err}
}

func Validation(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func Sink(sink string, err error) *Error {
	return &Error{Kind: KindSink, Op: sink, Err: err}
}

func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
