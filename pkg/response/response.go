// Package response provides standard API response helpers.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// InternalErrorMessage is the only text a client sees for unexpected failures.
const InternalErrorMessage = "internal server error"

// Response is the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Created sends a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// NoContent sends a 204 No Content response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Error:   message,
	})
}

// Abort sends an error response and stops the handler chain. Used by middleware.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// PayloadTooLarge sends a 413 error response.
func PayloadTooLarge(c *gin.Context, message string) {
	Error(c, http.StatusRequestEntityTooLarge, message)
}

// UnsupportedMediaType sends a 415 error response.
func UnsupportedMediaType(c *gin.Context, message string) {
	Error(c, http.StatusUnsupportedMediaType, message)
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, InternalErrorMessage)
}
