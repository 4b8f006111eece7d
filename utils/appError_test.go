package utils

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppErrorStatusFamilies(t *testing.T) {
	clientErr := NewAppError("No document found with that ID", http.StatusNotFound)
	assert.Equal(t, "fail", clientErr.Status)
	assert.True(t, clientErr.IsOperational)

	serverErr := NewAppError("There was an error sending the email. Try again later!", http.StatusInternalServerError)
	assert.Equal(t, "error", serverErr.Status)
}

func TestWrapErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := WrapError(cause, "Something went wrong", http.StatusInternalServerError)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "connection refused")
}
