package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// Accepted sends a 202 JSON response with data (queued work).
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with a message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Message: msg})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Message: msg})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Message: msg})
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Message: msg})
}

// Conflict sends 409.
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, Body{Success: false, Message: msg})
}

// Internal sends 500.
func Internal(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Message: msg})
}

// CapErrors truncates a list of row errors to max entries, appending a
// "+N more" line when entries were dropped.
func CapErrors(errs []string, max int) []string {
	if len(errs) <= max {
		return errs
	}
	capped := make([]string, 0, max+1)
	capped = append(capped, errs[:max]...)
	capped = append(capped, fmt.Sprintf("+%d more", len(errs)-max))
	return capped
}
