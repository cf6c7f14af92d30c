// Package boundary implements the request error-interception contract: how a
// condition raised during request handling is routed through layered error
// boundaries to a response.
//
// Three pieces compose, from the inside out:
//
//   - Table + Dispatch: a user-registrable table mapping condition tags to
//     responders, consulted inside the handler pipeline. Conditions the table
//     does not claim are re-raised toward the next boundary.
//   - Absorb: a user-installed absorbing middleware that catches anything
//     escaping the pipeline, logs it once, and answers 500. Nothing that is
//     absorbed here ever reaches the supervisor.
//   - Supervisor: the non-bypassable outer layer at the transport edge. Any
//     condition that reaches it is answered (via the table's default
//     registration, when present) and then re-signalled as an unstructured
//     traceback dump. This re-signalling is deliberate: it lets a hosting
//     process or test harness observe failures, and it is exactly why a
//     catch-all registered in the table still produces a second, raw log
//     record — the documented duplicate-logging behavior that Absorb avoids.
package boundary

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Responder converts a claimed condition into an HTTP response. Responders
// run inside the handler pipeline with the full request context available.
type Responder func(c *gin.Context, err error)

// CatchAll answers a condition at the transport edge, outside the handler
// pipeline. It is the default ("any error") registration consumed by the
// Supervisor — a separate code path from both table dispatch and Absorb.
type CatchAll func(w http.ResponseWriter, r *http.Request, err error)

type entry struct {
	match   func(error) bool
	respond Responder
}

// Table is an ordered registry of condition tag → responder. Registration
// order is match order, so the most specific tags must be registered first.
// A Table is built once during startup and must not be mutated afterwards;
// lookups are then safe for concurrent use.
type Table struct {
	entries  []entry
	catchAll CatchAll
}

// NewTable returns an empty table.
func NewTable() *Table { return &Table{} }

// Register adds a responder for conditions matched by match. Earlier
// registrations win, so register specific tags before broad ones.
func (t *Table) Register(match func(error) bool, respond Responder) {
	t.entries = append(t.entries, entry{match: match, respond: respond})
}

// RegisterDefault installs the catch-all registration. It is deliberately NOT
// consulted by Dispatch: the default tag belongs to the outer supervisory
// layer, which invokes it for the response and then re-signals the condition
// regardless. Installing a catch-all here therefore does not stop the
// duplicate traceback; use Absorb for that.
func (t *Table) RegisterDefault(respond CatchAll) {
	t.catchAll = respond
}

// resolve returns the first responder whose tag claims err.
func (t *Table) resolve(err error) (Responder, bool) {
	for _, e := range t.entries {
		if e.match(err) {
			return e.respond, true
		}
	}
	return nil, false
}

// Default returns the catch-all registration, if any.
func (t *Table) Default() (CatchAll, bool) {
	return t.catchAll, t.catchAll != nil
}

// Dispatch returns the inner interception middleware. After the downstream
// handlers run, it takes the last condition recorded on the context and asks
// the table for a responder. Claimed conditions are answered in place;
// unclaimed ones are re-raised so they propagate to the enclosing boundary
// (Absorb when installed, otherwise the Supervisor). Panics from downstream
// are not touched here at all.
func Dispatch(t *Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		c.Errors = c.Errors[:0] // consumed either way: responded or re-raised

		if respond, ok := t.resolve(err); ok {
			if !c.Writer.Written() {
				respond(c, err)
			}
			return
		}
		panic(err)
	}
}
