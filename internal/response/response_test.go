package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"n": 1}) })
	r.GET("/fields", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"title": "is required"})
	})
	r.GET("/empty", NoContent)
	return r
}

func get(r *gin.Engine, path, reqID string) (*httptest.ResponseRecorder, Response) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if reqID != "" {
		req.Header.Set(HeaderRequestID, reqID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body Response
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &body)
	}
	return w, body
}

func TestRequestIDReuseAndReplace(t *testing.T) {
	r := newEngine()

	w, body := get(r, "/ok", "trace-42.a_b")
	if got := w.Header().Get(HeaderRequestID); got != "trace-42.a_b" {
		t.Fatalf("header = %q", got)
	}
	if body.Metadata.RequestID != "trace-42.a_b" {
		t.Fatalf("metadata request id = %q", body.Metadata.RequestID)
	}

	for _, bad := range []string{"has space", "<script>", strings.Repeat("x", 65)} {
		w, body = get(r, "/ok", bad)
		got := w.Header().Get(HeaderRequestID)
		if got == bad || got == "" || body.Metadata.RequestID != got {
			t.Fatalf("%q: expected a generated id, got header %q metadata %q", bad, got, body.Metadata.RequestID)
		}
	}
}

func TestFailWithFieldsEnvelope(t *testing.T) {
	w, body := get(newEngine(), "/fields", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if body.Error == nil || body.Error.Code != ErrValidation || body.Error.Fields["title"] != "is required" {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
	if body.Error.Message != GetMessage(ErrValidation) || body.Data != nil {
		t.Fatalf("unexpected envelope: %+v", body)
	}
}

func TestNoContent(t *testing.T) {
	w, _ := get(newEngine(), "/empty", "")
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}
