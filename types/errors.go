package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine wraps exactly one of them.
var (
	ErrInvalidConfig       = errors.New("invalid config")
	ErrInsufficientData    = errors.New("insufficient data")
	ErrUnsupportedStrategy = errors.New("unsupported strategy")
	ErrInternal            = errors.New("internal error")
)

// BacktestError carries enough context for a caller to tell the user which
// parameter was wrong and which constraint it broke.
type BacktestError struct {
	Kind       error
	Param      string
	Constraint string
	Err        error
}

func (e *BacktestError) Error() string {
	msg := e.Kind.Error()
	if e.Param != "" {
		msg += ": " + e.Param
	}
	if e.Constraint != "" {
		msg += " " + e.Constraint
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BacktestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func InvalidConfig(param, constraint string, args ...any) *BacktestError {
	return &BacktestError{Kind: ErrInvalidConfig, Param: param, Constraint: fmt.Sprintf(constraint, args...)}
}

func InsufficientData(param, constraint string, args ...any) *BacktestError {
	return &BacktestError{Kind: ErrInsufficientData, Param: param, Constraint: fmt.Sprintf(constraint, args...)}
}

func UnsupportedStrategy(tag string) *BacktestError {
	return &BacktestError{Kind: ErrUnsupportedStrategy, Param: "strategy", Constraint: fmt.Sprintf("%q is not a supported strategy type", tag)}
}

func Internal(format string, args ...any) *BacktestError {
	return &BacktestError{Kind: ErrInternal, Constraint: fmt.Sprintf(format, args...)}
}
