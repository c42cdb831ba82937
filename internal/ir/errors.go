package ir

import (
	"errors"
	"fmt"
)

// BuildErrorCode categorizes compile-time (builder/compiler) errors.
type BuildErrorCode string

const (
	ErrArgOutOfRange       BuildErrorCode = "ARG_OUT_OF_RANGE"
	ErrEmptyStack          BuildErrorCode = "EMPTY_STACK"
	ErrDuplicateVariable   BuildErrorCode = "DUPLICATE_VARIABLE"
	ErrSymbolAllocFailed   BuildErrorCode = "SYMBOL_ALLOCATION_FAILED"
	ErrUnknownOption       BuildErrorCode = "UNKNOWN_OPTION"
	ErrProgramSealed       BuildErrorCode = "PROGRAM_SEALED"
	ErrCyclicReference     BuildErrorCode = "CYCLIC_REFERENCE"
)

// BuildError reports a failure encountered while constructing the
// program table. The partially-built stack is preserved by the caller
// so it can decide whether to discard the instance — BuildError itself
// carries no mutable state.
type BuildError struct {
	Code    BuildErrorCode
	Message string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build error [%s]: %s", e.Code, e.Message)
}

// IsBuildError reports whether err (or a wrapped cause) is a
// *BuildError, optionally narrowing to a specific code when code != "".
func IsBuildError(err error, code BuildErrorCode) bool {
	var be *BuildError
	if !errors.As(err, &be) {
		return false
	}
	return code == "" || be.Code == code
}

// RuntimeErrorCode categorizes errors raised while processing input.
type RuntimeErrorCode string

const (
	ErrOutOfOrderInput RuntimeErrorCode = "OUT_OF_ORDER_INPUT"
	ErrCoordOverflow   RuntimeErrorCode = "COORD_OVERFLOW"

	// ErrInstancePoolExhausted and ErrResultCapExceeded back the
	// engine's resource-bound quota. Unlike
	// OutOfOrderInput/CoordOverflow, which reject a single
	// token, these signal the state machine has hit an operator-set
	// ceiling and should be treated as fatal by the caller.
	ErrInstancePoolExhausted RuntimeErrorCode = "INSTANCE_POOL_EXHAUSTED"
	ErrResultCapExceeded     RuntimeErrorCode = "RESULT_CAP_EXCEEDED"
)

// RuntimeError reports a failure processing a single input token. A
// RuntimeError aborts only the offending input call — the state
// machine remains usable afterwards.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error [%s]: %s", e.Code, e.Message)
}

// IsRuntimeError reports whether err (or a wrapped cause) is a
// *RuntimeError, optionally narrowing to a specific code.
func IsRuntimeError(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return false
	}
	return code == "" || re.Code == code
}
