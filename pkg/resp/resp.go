// Package resp writes the {code, message, data} envelope the frontend
// unwraps. Code 0 means success; errors map each apperr kind to its own HTTP
// status and user-facing message category.
package resp

import (
	"errors"
	"net/http"

	"cityfix-be/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "ok", "data": data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 1, "message": msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"code": 1, "message": msg})
}

// Error maps a core error to its HTTP status. Unknown errors become a
// generic 500 so transport/store details never leak.
func Error(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "message": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInvalidTransition:
		status = http.StatusConflict
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindStoreUnavailable:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"code": 1, "message": e.Message})
}
