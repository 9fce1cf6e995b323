package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
// while harvesting pages and downloading images.
type ErrorType string

const (
	ErrorTypeFetch  ErrorType = "fetch"  // network failure, timeout, non-2xx status
	ErrorTypeParse  ErrorType = "parse"  // markup or URL could not be processed
	ErrorTypeIO     ErrorType = "io"     // filesystem write/create failure
	ErrorTypeDecode ErrorType = "decode" // unsupported or corrupt image payload
)

// Error is a typed error tagged with the URL that produced it. All four
// types are local to a single page or image: they are collected at the
// fan-out boundary and never abort sibling work.
type Error struct {
	Type    ErrorType
	URL     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error for %s: %s: %v", e.Type, e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error for %s: %s", e.Type, e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewFetch wraps a network-level or HTTP-status failure.
func NewFetch(url, message string, err error) *Error {
	return &Error{Type: ErrorTypeFetch, URL: url, Message: message, Err: err}
}

// NewParse wraps a markup or URL processing failure.
func NewParse(url, message string, err error) *Error {
	return &Error{Type: ErrorTypeParse, URL: url, Message: message, Err: err}
}

// NewIO wraps a filesystem failure.
func NewIO(url, message string, err error) *Error {
	return &Error{Type: ErrorTypeIO, URL: url, Message: message, Err: err}
}

// NewDecode wraps an image decode/encode failure.
func NewDecode(url, message string, err error) *Error {
	return &Error{Type: ErrorTypeDecode, URL: url, Message: message, Err: err}
}

// TypeOf returns the ErrorType of err, or empty string if err is not a typed Error.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsFetch reports whether err is a fetch error.
func IsFetch(err error) bool { return TypeOf(err) == ErrorTypeFetch }

// IsDecode reports whether err is a decode error.
func IsDecode(err error) bool { return TypeOf(err) == ErrorTypeDecode }
