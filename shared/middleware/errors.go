package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/abpira/accounts/shared/models"
	"github.com/gin-gonic/gin"
)

// RespondWithError writes the standard ErrorResponse body.
func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, models.ErrorResponse{
		APIPath:      "uri=" + c.Request.URL.Path,
		ErrorCode:    errorCode(code),
		ErrorMessage: message,
		ErrorTime:    time.Now().UTC(),
	})
}

// RespondWithStatus writes a StatusResponse body.
func RespondWithStatus(c *gin.Context, code int, statusCode, statusMsg string) {
	c.JSON(code, models.StatusResponse{StatusCode: statusCode, StatusMsg: statusMsg})
}

// errorCode renders 404 as "NOT_FOUND", 500 as "INTERNAL_SERVER_ERROR" and so on.
func errorCode(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

// Recovery turns panics into a 500 ErrorResponse. report, when non-nil, is
// handed the recovered value first.
func Recovery(report func(c *gin.Context, recovered any)) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if report != nil {
			report(c, recovered)
		}
		RespondWithError(c, http.StatusInternalServerError, "Internal server error")
		c.Abort()
	})
}

// NoRoute answers unknown paths with a 404 ErrorResponse.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		RespondWithError(c, http.StatusNotFound, "Resource not found")
	}
}
