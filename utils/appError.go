package utils

import "fmt"

// AppError is an expected, user-facing failure. Its message is always safe to
// disclose; anything else funneled through the error controller is treated as
// a programming error in production.
type AppError struct {
	StatusCode    int
	Status        string // "fail" for 4xx, "error" for 5xx
	Message       string
	IsOperational bool
	Err           error
}

func NewAppError(message string, statusCode int) *AppError {
	return &AppError{
		StatusCode:    statusCode,
		Status:        statusFamily(statusCode),
		Message:       message,
		IsOperational: true,
	}
}

// WrapError keeps hold of an underlying cause while presenting message.
func WrapError(err error, message string, statusCode int) *AppError {
	appErr := NewAppError(message, statusCode)
	appErr.Err = err
	return appErr
}

func statusFamily(statusCode int) string {
	if statusCode >= 400 && statusCode < 500 {
		return "fail"
	}
	return "error"
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}
