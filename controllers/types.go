package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/blog-api/utils"
)

type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Validation failures never reached a backend; backend failures surface
// unmodified for single-entity operations.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case utils.IsValidation(err):
		status = http.StatusBadRequest
	case utils.IsNotFound(err):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error(), "success": false})
}
