package xerr

import "fmt"

// CodeError carries an HTTP-ish status code alongside a caller-facing message.
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrSuccess     = New(OK, "Success")
	ErrServerError = New(InternalServerError, "internal error")
	ErrParam       = New(BadRequest, "invalid request parameters")

	// Terminal pipeline errors. These are reported conditions, not retryable ones.
	ErrNoTemplateMatch  = New(NotFound, "no matching templates found")
	ErrTemplateNotFound = New(InternalServerError, "template referenced by index is missing from the template table")
)
