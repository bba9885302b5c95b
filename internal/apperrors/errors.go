// Package apperrors defines the error kinds shared by the screening components.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers at the CLI boundary.
type Kind string

const (
	KindData            Kind = "data"
	KindUnknownCategory Kind = "unknown_category"
	KindValidation      Kind = "validation"
	KindExtraction      Kind = "extraction"
	KindInternal        Kind = "internal"
)

// Base errors. Every *Error matches the sentinel of its kind with errors.Is.
var (
	ErrData            = errors.New("unusable training data")
	ErrUnknownCategory = errors.New("unknown category")
	ErrValidation      = errors.New("invalid input")
	ErrExtraction      = errors.New("text extraction failed")
)

// Error carries the kind, the operation that detected it and an optional cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is against the kind sentinels.
func (e *Error) Is(target error) bool {
	return sentinel(e.Kind) == target && target != nil
}

func sentinel(kind Kind) error {
	switch kind {
	case KindData:
		return ErrData
	case KindUnknownCategory:
		return ErrUnknownCategory
	case KindValidation:
		return ErrValidation
	case KindExtraction:
		return ErrExtraction
	default:
		return nil
	}
}

// Data reports a corpus that cannot produce a usable model.
func Data(op, format string, args ...any) error {
	return &Error{Kind: KindData, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a malformed request.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// UnknownCategory reports a label absent from the trained label space.
func UnknownCategory(op, label string) error {
	return &Error{Kind: KindUnknownCategory, Op: op, Message: fmt.Sprintf("category %q is not in the trained label space", label)}
}

// Extraction reports that no text could be obtained for a document.
func Extraction(op, path string, cause error) error {
	return &Error{Kind: KindExtraction, Op: op, Message: fmt.Sprintf("no text for %q", path), Cause: cause}
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
