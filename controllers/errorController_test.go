package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"golang-tourbackend/models"
	"golang-tourbackend/utils"
)

func TestNormalizeErrorPassesAppErrorThrough(t *testing.T) {
	original := utils.NewAppError("No document found with that ID", http.StatusNotFound)

	appErr := NormalizeError(original)

	assert.Same(t, original, appErr)
}

func TestNormalizeErrorValidation(t *testing.T) {
	err := models.Validate.Struct(models.User{})
	require.Error(t, err)

	appErr := NormalizeError(err)

	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, "fail", appErr.Status)
	assert.True(t, appErr.IsOperational)
	assert.Contains(t, appErr.Message, "Invalid input data.")
}

func TestNormalizeErrorDuplicateKey(t *testing.T) {
	err := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	appErr := NormalizeError(err)

	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, "Duplicate field value. Please use another value.", appErr.Message)
}

func TestNormalizeErrorNoDocuments(t *testing.T) {
	appErr := NormalizeError(mongo.ErrNoDocuments)

	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, "No document found with that ID", appErr.Message)
}

func TestNormalizeErrorInvalidObjectID(t *testing.T) {
	_, err := primitive.ObjectIDFromHex("not-a-hex-id")
	require.Error(t, err)

	appErr := NormalizeError(err)

	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestNormalizeErrorExpiredToken(t *testing.T) {
	err := jwt.NewValidationError("token is expired", jwt.ValidationErrorExpired)

	appErr := NormalizeError(err)

	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	assert.Equal(t, "Your token has expired! Please log in again.", appErr.Message)
}

func TestNormalizeErrorMalformedToken(t *testing.T) {
	err := jwt.NewValidationError("signature is invalid", jwt.ValidationErrorSignatureInvalid)

	appErr := NormalizeError(err)

	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	assert.Equal(t, "Invalid token. Please log in again!", appErr.Message)
}

func TestNormalizeErrorUnknownIsNotOperational(t *testing.T) {
	appErr := NormalizeError(errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	assert.False(t, appErr.IsOperational)
	assert.Equal(t, "Something went wrong", appErr.Message)
}

func newErrorTestRouter(raise error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/api/v1/boom", func(c *gin.Context) {
		abortWithError(c, raise)
	})
	router.GET("/boom", func(c *gin.Context) {
		abortWithError(c, raise)
	})
	return router
}

func TestErrorHandlerRendersOperationalJSON(t *testing.T) {
	router := newErrorTestRouter(utils.NewAppError("No document found with that ID", http.StatusNotFound))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "No document found with that ID", body["message"])
}

func TestErrorHandlerHidesInternalsInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	router := newErrorTestRouter(errors.New("pq: connection reset"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Something went wrong", body["message"])
	assert.NotContains(t, body, "error")
}

func TestErrorHandlerExposesCauseInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	router := newErrorTestRouter(errors.New("pq: connection reset"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil)
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "pq: connection reset", body["error"])
}

func TestErrorHandlerRendersHTMLOutsideAPI(t *testing.T) {
	router := newErrorTestRouter(utils.NewAppError("Page not found", http.StatusNotFound))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Page not found")
}
