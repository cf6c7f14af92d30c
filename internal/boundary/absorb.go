package boundary

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Absorb returns the absorbing middleware. It wraps the entire downstream
// pipeline (every route plus the table dispatch) in a single interception
// region: any condition escaping the pipeline is caught here, logged exactly
// once at error level, and answered with a generic 500 envelope. Because the
// condition is fully absorbed inside this scope it never reaches the
// supervisory layer, so no second propagation and no raw traceback occurs.
//
// Install it outside Dispatch so conditions re-raised by the table land here.
func Absorb() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			log.Error().
				Str("request_id", c.Writer.Header().Get("X-Request-ID")).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Interface("error", rec).
				Msg("unexpected error")

			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"message": "Internal Server Error",
				})
				return
			}
			c.Abort()
		}()
		c.Next()
	}
}
