package writing

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeValidation        ErrorCode = "validation"
	CodeTransport         ErrorCode = "transport"
	CodeMalformedResponse ErrorCode = "malformed_response"
	CodeConfiguration     ErrorCode = "configuration"
	CodeNotFound          ErrorCode = "not_found"
)

// Error: доменная ошибка. errors.Is сравнивает по Code с сентинелами ниже.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels: a target with the same code and no message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == "" && t.Err == nil
}

var (
	ErrValidation        = &Error{Code: CodeValidation}
	ErrTransport         = &Error{Code: CodeTransport}
	ErrMalformedResponse = &Error{Code: CodeMalformedResponse}
	ErrConfiguration     = &Error{Code: CodeConfiguration}
	ErrNotFound          = &Error{Code: CodeNotFound}
)

func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func WrapError(err error, code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
