package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePanics logs the recovered value and answers 500 without leaking it.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		event := log.Error().
			Str("requestID", c.GetString(RequestIDKey)).
			Str("path", c.Request.URL.Path)
		if err, ok := recovered.(error); ok {
			event = event.Err(err)
		} else {
			event = event.Str("panic", fmt.Sprint(recovered))
		}
		event.Msg("Recovered from panic")

		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
