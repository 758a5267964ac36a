package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationError  ErrorCode = "VALIDATION_ERROR"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeIO               ErrorCode = "IO_ERROR"
	CodeParse            ErrorCode = "PARSE_ERROR"
	CodeCircular         ErrorCode = "CIRCULAR_DEPENDENCY"
	CodeAmbiguous        ErrorCode = "AMBIGUOUS"
	CodeInvalidPath      ErrorCode = "INVALID_PATH"
	CodeAlreadyDefined   ErrorCode = "ALREADY_DEFINED"
	CodeNotExported      ErrorCode = "NOT_EXPORTED"
	CodeNoActiveScope    ErrorCode = "NO_ACTIVE_SCOPE"
	CodeTypeMismatch     ErrorCode = "TYPE_MISMATCH"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// Coded is implemented by the structured errors of the engine packages so
// callers can branch on a code without knowing the concrete type.
type Coded interface {
	error
	ErrorCode() ErrorCode
}

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxModule    = "module"
	CtxSymbol    = "symbol"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) ErrorCode() ErrorCode {
	return e.Code
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

// Wrap keeps the code of a wrapped coded error reachable through IsCode while
// tagging the outer error with its own code.
func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches a key/value pair to the outermost DomainError in err's
// chain, wrapping err in an internal DomainError when there is none.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return err
	}
	code := CodeInternal
	if c, ok := CodeOf(err); ok {
		code = c
	}
	return &DomainError{
		Code:    code,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if c, ok := err.(Coded); ok && c.ErrorCode() == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// CodeOf returns the code of the first coded error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var c Coded
	if errors.As(err, &c) {
		return c.ErrorCode(), true
	}
	return "", false
}
