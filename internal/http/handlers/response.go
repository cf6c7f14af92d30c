// Package handlers provides the demo's route handlers and the responders
// registered against the condition table.
//
// All responses share a single one-field envelope:
//
//	HTTP/1.1 404 Not Found
//	{ "message": "Not Found" }
//
// Well-known conditions map to their status and reason phrase with no logging
// side effect; unanticipated conditions always map to a generic 500 and are
// logged at error level by whichever boundary absorbs them.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mkarlsen/go-error-boundaries/internal/boundary"
	"github.com/mkarlsen/go-error-boundaries/internal/http/middleware"
	"github.com/mkarlsen/go-error-boundaries/internal/httperr"
)

// Envelope is the standard response body for every route and every error.
type Envelope struct {
	// Message is the reason phrase or generic error text, safe to show to users.
	Message string `json:"message" example:"Not Found"`
}

// MatchWellKnown is the condition tag for the well-known registration.
func MatchWellKnown(err error) bool {
	_, ok := httperr.IsWellKnown(err)
	return ok
}

// WellKnown returns the known-error responder: status S and reason R become
// an S response with body {"message": R}. Deterministic, total over 400–599,
// and silent — anticipated conditions are not error-log material.
func WellKnown() boundary.Responder {
	return func(c *gin.Context, err error) {
		he, ok := httperr.IsWellKnown(err)
		if !ok {
			// Misregistration; let the outer boundaries deal with it.
			panic(err)
		}
		c.JSON(he.Status, Envelope{Message: he.Reason})
	}
}

// CatchAll returns the default ("any error") registration for the condition
// table. It emits one structured error record whose message is the
// condition's string form, then answers with the generic 500 envelope.
//
// Note that this registration is executed by the outer supervisory layer,
// which re-signals the condition after the response regardless — registering
// a catch-all here does not prevent the duplicate traceback dump.
func CatchAll() boundary.CatchAll {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().
			Str("request_id", w.Header().Get(middleware.HeaderRequestID)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(err.Error())

		writeJSON(w, http.StatusInternalServerError, Envelope{
			Message: http.StatusText(http.StatusInternalServerError),
		})
	}
}

// writeJSON writes a JSON response outside the Gin pipeline. Responders at
// the transport edge have only the raw ResponseWriter to work with.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
