package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError is one per-field entry in a validation failure response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// OK writes the success envelope. Every 2xx response goes through here so the
// shape stays uniform across handlers.
func OK(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

// Fail writes the failure envelope with a single human-readable message.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}

// FailFields writes a validation failure with per-field detail.
func FailFields(c *gin.Context, code int, message string, fields []FieldError) {
	c.JSON(code, gin.H{"success": false, "message": message, "errors": fields})
}

// BindFail translates a binding error into the failure envelope. Validator
// errors become per-field entries; anything else is reported as malformed
// input.
func BindFail(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: fieldMessage(fe),
			})
		}
		FailFields(c, 400, "Validation failed", fields)
		return
	}
	Fail(c, 400, "Invalid request body")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	}
	return field + " is invalid"
}
