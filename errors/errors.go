package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Error is the API error type carried from the service layer to the
// response envelope.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

var (
	ErrNotFound            = New("resource not found", http.StatusNotFound)
	ErrUnauthorized        = New("unauthorized", http.StatusUnauthorized)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
)

// Classification adapter failures, kept distinct so callers can tell a
// dead upstream from a garbled answer.
type ClassificationServiceError struct {
	Err error
}

func (e *ClassificationServiceError) Error() string {
	return fmt.Sprintf("classification service: %v", e.Err)
}

func (e *ClassificationServiceError) Unwrap() error { return e.Err }

type ClassificationParseError struct {
	Reason string
}

func (e *ClassificationParseError) Error() string {
	return fmt.Sprintf("classification response unusable: %s", e.Reason)
}

// GetUniqueContraintError maps a postgres duplicate-key failure to a
// client-facing error, otherwise hides the store detail.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "duplicate key value") {
		return New("record already exists", http.StatusConflict)
	}
	return ErrInternalServerError
}

// ErrorHandler is the gin-rate-limit error callback.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error": "too many requests, try again in " + time.Until(info.ResetTime).String(),
	})
}
