package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/enspm-hub/hub-backend/internal/apperr"
)

// Fail maps a service error to a status code and a {"detail": …} body.
// Unrecognised errors become a vague 500 in release mode and a verbose one
// in debug mode.
func Fail(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		body := gin.H{"detail": e.Detail}
		if len(e.Fields) > 0 {
			body["errors"] = e.Fields
		}
		c.JSON(e.Status(), body)
		return
	}

	log.Printf("[error] request_id=%s path=%s unhandled: %v",
		c.GetString("request_id"), c.Request.URL.Path, err)

	if gin.Mode() == gin.DebugMode {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":        "Une erreur interne est survenue.",
			"error_message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"detail": "Une erreur inattendue est survenue. L'équipe technique a été notifiée.",
	})
}

// FieldError is one entry of a 422 validation response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FailValidation returns the 422 shape used for schema validation errors.
func FailValidation(c *gin.Context, errs []FieldError) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"detail": "Erreur de validation.",
		"errors": errs,
	})
}

// BadBody is the uniform 422 for unparseable request bodies.
func BadBody(c *gin.Context, err error) {
	FailValidation(c, []FieldError{{Field: "non_field_error", Message: err.Error()}})
}
