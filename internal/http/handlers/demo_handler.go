// Demo route handlers.
//
// The two routes exist to exercise the interception boundaries:
//   - GET /404 raises a well-known condition (status 404)
//   - GET /500 raises an unanticipated condition
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarlsen/go-error-boundaries/internal/httperr"
)

// errUnexpected is the unanticipated condition raised by /500. Its string
// form is what the handler-table variant's structured record carries.
var errUnexpected = errors.New("unexpected error")

// RaiseNotFound records a well-known 404 condition. The condition table
// resolves it to `404 {"message":"Not Found"}`; nothing is logged.
func RaiseNotFound(c *gin.Context) {
	_ = c.Error(httperr.New(http.StatusNotFound))
}

// RaiseUnanticipated simulates an arbitrary failure no registration
// anticipates. The panic propagates until an interception boundary absorbs
// it: the absorbing middleware under the middleware variant, or the outer
// supervisory layer under the handler variant.
func RaiseUnanticipated(c *gin.Context) {
	panic(errUnexpected)
}

// Health is the liveness endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
