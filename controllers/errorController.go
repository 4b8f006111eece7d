package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"golang-tourbackend/utils"
)

// abortWithError hands a failure to the error funnel. Handlers never render
// their own error responses.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler is the single funnel for every failure raised in the pipeline.
// It classifies the error, picks the disclosure policy for the deployment
// mode and renders either a JSON envelope or an error page.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := NormalizeError(c.Errors.Last().Err)

		if !appErr.IsOperational {
			log.Printf("ERROR %v", appErr.Err)
		}

		if isAPIRequest(c) {
			sendJSONError(c, appErr)
			return
		}
		sendPageError(c, appErr)
	}
}

// NormalizeError maps any failure onto the uniform operational-error shape.
func NormalizeError(err error) *utils.AppError {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		messages := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			messages = append(messages, validationMessage(fe))
		}
		return utils.WrapError(err,
			"Invalid input data. "+strings.Join(messages, ". "),
			http.StatusBadRequest)
	}

	if mongo.IsDuplicateKeyError(err) {
		return utils.WrapError(err,
			"Duplicate field value. Please use another value.",
			http.StatusBadRequest)
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.WrapError(err, "No document found with that ID", http.StatusNotFound)
	}

	if errors.Is(err, primitive.ErrInvalidHex) {
		return utils.WrapError(err, "Invalid id value", http.StatusBadRequest)
	}

	var jwtErr *jwt.ValidationError
	if errors.As(err, &jwtErr) {
		if jwtErr.Errors&jwt.ValidationErrorExpired != 0 {
			return utils.WrapError(err, "Your token has expired! Please log in again.", http.StatusUnauthorized)
		}
		return utils.WrapError(err, "Invalid token. Please log in again!", http.StatusUnauthorized)
	}

	return &utils.AppError{
		StatusCode:    http.StatusInternalServerError,
		Status:        "error",
		Message:       "Something went wrong",
		IsOperational: false,
		Err:           err,
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field %s is required", fe.Field())
	case "min":
		return fmt.Sprintf("Field %s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field %s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("Field %s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("Field %s must be one of: %s", fe.Field(), fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "ltfield":
		return fmt.Sprintf("Field %s must be less than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Field %s is invalid", fe.Field())
	}
}

func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func isProduction() bool {
	return os.Getenv("APP_ENV") == "production"
}

func sendJSONError(c *gin.Context, appErr *utils.AppError) {
	if !isProduction() {
		body := gin.H{
			"status":  appErr.Status,
			"message": appErr.Message,
		}
		if appErr.Err != nil {
			body["error"] = appErr.Err.Error()
		}
		c.JSON(appErr.StatusCode, body)
		return
	}

	if appErr.IsOperational {
		c.JSON(appErr.StatusCode, gin.H{
			"status":  appErr.Status,
			"message": appErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":  "error",
		"message": "Something went wrong",
	})
}

func sendPageError(c *gin.Context, appErr *utils.AppError) {
	message := appErr.Message
	if isProduction() && !appErr.IsOperational {
		message = "Please try again later."
	}
	page := fmt.Sprintf(
		"<!DOCTYPE html><html><head><title>Something went wrong!</title></head><body><h1>Something went wrong!</h1><p>%s</p></body></html>",
		message)
	c.Data(appErr.StatusCode, "text/html; charset=utf-8", []byte(page))
}
