package errors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error with an HTTP status code
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of e carrying err as its cause
func (e *Error) Wrap(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Checkout and cart error types
var (
	ErrValidation          = New(http.StatusBadRequest, "Invalid data format", nil)
	ErrEmptyCart           = New(http.StatusBadRequest, "Cart is empty", nil)
	ErrInsufficientStock   = New(http.StatusBadRequest, "Insufficient stock", nil)
	ErrInsufficientBalance = New(http.StatusBadRequest, "Insufficient balance", nil)
	ErrNoBalanceAccount    = New(http.StatusBadRequest, "No account balance available", nil)
)

// Security error types
var (
	ErrRateLimited      = New(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
	ErrSecurityReview   = New(http.StatusForbidden, "Transaction flagged for security review", nil)
	ErrWebhookSignature = New(http.StatusForbidden, "Invalid signature", nil)
)

// Generic error types
var (
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Respond writes err to the response as the standard JSON failure envelope.
// Unclassified errors are reported as an opaque internal error.
func Respond(c *gin.Context, err error) {
	appErr, ok := err.(*Error)
	if !ok {
		appErr = ErrInternalServer
	}
	c.JSON(appErr.Code, gin.H{"success": false, "error": appErr.Message})
}
