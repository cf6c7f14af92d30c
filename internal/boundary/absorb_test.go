package boundary

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf) // plain JSON lines
	return &buf
}

func TestAbsorb_ConvertsEscapedConditionTo500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(Absorb())
	r.GET("/500", func(c *gin.Context) {
		panic(errors.New("unexpected error"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/500", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["message"] != "Internal Server Error" {
		t.Fatalf("unexpected body: %v", body)
	}

	logs := buf.String()
	if got := strings.Count(logs, `"level":"error"`); got != 1 {
		t.Fatalf("error records = %d; want exactly 1\n%s", got, logs)
	}
	if !strings.Contains(logs, `"message":"unexpected error"`) {
		t.Fatalf("missing fixed error message:\n%s", logs)
	}
}

func TestAbsorb_CatchesConditionsReRaisedByDispatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(Absorb())
	r.Use(Dispatch(NewTable())) // empty table: everything re-raises
	r.GET("/500", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/500", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
	if got := strings.Count(buf.String(), `"level":"error"`); got != 1 {
		t.Fatalf("error records = %d; want exactly 1", got)
	}
}

func TestAbsorb_NothingEscapesOutward(t *testing.T) {
	gin.SetMode(gin.TestMode)
	captureLogger(t)

	r := gin.New()
	r.Use(Absorb())
	r.GET("/500", func(c *gin.Context) { panic("kaboom") })

	defer func() {
		if rec := recover(); rec != nil {
			t.Fatalf("condition escaped the absorbing boundary: %v", rec)
		}
	}()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/500", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
}

func TestAbsorb_LeavesCleanRequestsAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(Absorb())
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "fine") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("clean request produced an error record:\n%s", buf.String())
	}
}

func TestAbsorb_DoesNotOverwriteWrittenResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	captureLogger(t)

	r := gin.New()
	r.Use(Absorb())
	r.GET("/partial", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("after write")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/partial", nil))
	if !strings.Contains(w.Body.String(), "partial") {
		t.Fatalf("body lost: %q", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "Internal Server Error") {
		t.Fatalf("absorb appended a second body: %q", w.Body.String())
	}
}
