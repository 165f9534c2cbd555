package markupguard

import "errors"

// Code is a machine-readable failure reason.
type Code string

const (
	// CodeParse reports input the parser could not recover from.
	CodeParse Code = "PARSE_ERROR"
	// CodeLimitExceeded reports input beyond the size, depth or node guard.
	CodeLimitExceeded Code = "POLICY_VIOLATION_LIMIT_EXCEEDED"
	// CodeSerialize reports a tree the renderer refused to write.
	CodeSerialize Code = "SERIALIZE_ERROR"
	// CodeInternal reports a recovered panic.
	CodeInternal Code = "INTERNAL"
)

// Sentinels for errors.Is. They match any *Error with the same Code.
var (
	ErrParse         = &Error{Code: CodeParse, Message: "parse markup"}
	ErrLimitExceeded = &Error{Code: CodeLimitExceeded, Message: "markup exceeds limits"}
	ErrSerialize     = &Error{Code: CodeSerialize, Message: "serialize markup"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal sanitizer failure"}
)

// Error is a structured sanitization failure.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// CodeOf returns the Code carried by err, or "" when err is nil or not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func wrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}
