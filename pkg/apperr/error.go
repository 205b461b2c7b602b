// Package apperr defines the single Error type every Assemble error kind is
// built from (grounded on the teacher's engine/core.Error), plus one
// constructor per kind named in spec.md §7, and backtrace-aware rendering
// for the CLI's -b/-B flags.
package apperr

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Code identifies an error kind. Values match spec.md §7 exactly.
type Code string

const (
	CodeInvalidIdentifier            Code = "INVALID_IDENTIFIER"
	CodeIdentifierNotFound           Code = "IDENTIFIER_NOT_FOUND"
	CodeNoIdentifiersFound           Code = "NO_IDENTIFIERS_FOUND"
	CodeTooManyIdentifiersFound      Code = "TOO_MANY_IDENTIFIERS_FOUND"
	CodeDuplicateTask                Code = "DUPLICATE_TASK"
	CodePropertyNotSet               Code = "PROPERTY_NOT_SET"
	CodeTypeMismatch                 Code = "TYPE_MISMATCH"
	CodeCycleFound                   Code = "CYCLE_FOUND"
	CodeAcquisitionError             Code = "ACQUISITION_ERROR"
	CodeConfigurationAlreadyResolved Code = "CONFIGURATION_ALREADY_RESOLVED"
	CodeStopTask                     Code = "STOP_TASK"
	CodeStopAction                   Code = "STOP_ACTION"
	CodeTaskFailed                   Code = "TASK_FAILED"
	CodeLockPoisonError              Code = "LOCK_POISON_ERROR"
	CodeNoSharedProjectSet           Code = "NO_SHARED_PROJECT_SET"
	CodeFingerprintStoreError        Code = "FINGERPRINT_STORE_ERROR"
	CodeWorkerPanic                  Code = "WORKER_PANIC"
	CodeUnknownOption                Code = "UNKNOWN_OPTION"
	CodeOptionDoesNotTakeValue       Code = "OPTION_DOES_NOT_TAKE_VALUE"
	CodeOptionTakesValueButNoneGiven Code = "OPTION_TAKES_VALUE_BUT_NONE_PROVIDED"
)

// Error is the single error type every Assemble error kind is built from.
type Error struct {
	Message string
	Code    Code
	Details map[string]any
	cause   error
	stack   error // pkg/errors-wrapped, carries the captured backtrace
}

// New builds an *Error carrying code, optional details, and an optional
// wrapped cause. The backtrace is captured at construction time.
func New(cause error, code Code, details map[string]any) *Error {
	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}
	return &Error{
		Message: message,
		Code:    code,
		Details: details,
		cause:   cause,
		stack:   pkgerrors.WithStack(fmt.Errorf("%s: %s", code, message)),
	}
}

// Newf is New with an fmt.Errorf-style message and no wrapped cause.
func Newf(code Code, details map[string]any, format string, args ...any) *Error {
	return New(fmt.Errorf(format, args...), code, details)
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// AsMap renders the error for structured (JSON) CLI output.
func (e *Error) AsMap() map[string]any {
	if e == nil {
		return nil
	}
	if e.Message == "" && e.Code == "" && e.Details == nil {
		return nil
	}
	return map[string]any{
		"message": e.Message,
		"code":    string(e.Code),
		"details": e.Details,
	}
}

// Is supports errors.Is matching purely on Code, so callers can write
// `errors.Is(err, apperr.New(nil, apperr.CodeCycleFound, nil))`.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok || other == nil || e == nil {
		return false
	}
	return e.Code == other.Code
}
