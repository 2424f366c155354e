package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
)

// StatusFor maps an error kind to the HTTP status the API answers with.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindMalformedPayload:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes the {success:false, message} envelope.
func RespondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": apperr.PublicMessage(err),
		"code":    string(kind),
	})
}

// RespondErrorWith adds extra fields to the error envelope.
func RespondErrorWith(c *gin.Context, err error, extra gin.H) {
	kind := apperr.KindOf(err)
	body := gin.H{
		"success": false,
		"message": apperr.PublicMessage(err),
		"code":    string(kind),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(StatusFor(kind), body)
}

func RespondOK(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// RespondMessage writes {success:true, message}.
func RespondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": true, "message": msg})
}
