package boundary

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime/debug"
)

// TracebackHeader prefixes every unstructured traceback block written by the
// supervisor. Log-capture tooling can count occurrences of this marker to
// detect re-signalled conditions.
const TracebackHeader = "unhandled error in request pipeline"

// Escaped is a condition that escaped the handler pipeline and reached the
// supervisory layer, together with the stack captured at the recovery point.
type Escaped struct {
	Err   error
	Stack []byte
}

// Supervisor models the framework-owned outer error boundary at the transport
// edge. It is non-bypassable by construction: the transport invokes Guard
// around the whole handler pipeline, and every condition Guard recovers is
// later re-signalled through Resignal as an unstructured traceback dump.
//
// The response side is pluggable: when the table carries a default
// registration the supervisor uses it to answer the request (structured log
// plus 500 envelope), otherwise it answers with a bare 500. The re-signal
// side is not pluggable — that is the point.
type Supervisor struct {
	table *Table
	out   io.Writer
}

// NewSupervisor returns a supervisor that consults table for the default
// catch-all registration and writes traceback dumps to out. A nil out falls
// back to stderr, the conventional sink of the hosting process.
func NewSupervisor(table *Table, out io.Writer) *Supervisor {
	if out == nil {
		out = os.Stderr
	}
	return &Supervisor{table: table, out: out}
}

// Guard runs next and recovers any condition that escapes it. The recovered
// condition is answered immediately (so the client still receives exactly one
// response) and returned to the caller, which must hand it back to Resignal
// once the response has been observed. A nil return means the pipeline
// completed on its own.
func (s *Supervisor) Guard(w http.ResponseWriter, r *http.Request, next http.Handler) (esc *Escaped) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		err := coerce(rec)
		esc = &Escaped{Err: err, Stack: debug.Stack()}

		if respond, ok := s.table.Default(); ok {
			respond(w, r, err)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}()

	next.ServeHTTP(w, r)
	return nil
}

// Resignal dumps the escaped condition as a raw multi-line traceback block.
// It runs unconditionally for every condition that reached the supervisor —
// including ones already answered by the default registration, which is the
// source of the duplicate log record this layer is known for.
func (s *Supervisor) Resignal(r *http.Request, esc *Escaped) {
	fmt.Fprintf(s.out, "%s: %s %s: %v\n%s\n", TracebackHeader, r.Method, r.URL.Path, esc.Err, esc.Stack)
}

// coerce turns an arbitrary panic value into an error.
func coerce(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("%v", rec)
}
