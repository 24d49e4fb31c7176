package response

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pmerrors "github.com/agentstation/productmap/pkg/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var decoded Response
	if err := json.NewDecoder(w.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return decoded
}

// TestSuccess tests the Success helper function.
func TestSuccess(t *testing.T) {
	resp := Success(map[string]string{"message": "success"})

	if resp.Data == nil {
		t.Error("expected Data to be set")
	}
	if resp.Error != nil {
		t.Error("expected Error to be nil")
	}
}

// TestFail tests the Fail helper function.
func TestFail(t *testing.T) {
	resp := Fail("TEST_ERROR", "Test error message", "Additional details")

	if resp.Data != nil {
		t.Error("expected Data to be nil")
	}
	if resp.Error == nil {
		t.Fatal("expected Error to be set")
	}
	if resp.Error.Code != "TEST_ERROR" || resp.Error.Message != "Test error message" || resp.Error.Details != "Additional details" {
		t.Errorf("unexpected error body: %+v", resp.Error)
	}
}

// TestJSON tests the JSON helper function.
func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, Success(map[string]string{"test": "data"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type=application/json, got %s", ct)
	}

	decoded := decode(t, w)
	if decoded.Data == nil {
		t.Error("expected decoded Data to be set")
	}
	if decoded.Error != nil {
		t.Error("expected decoded Error to be nil")
	}
}

// TestErrorHelpers tests the status helpers.
func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", "") }, http.StatusBadRequest, "BAD_REQUEST"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "who", "") }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "gone", "") }, http.StatusNotFound, "NOT_FOUND"},
		{"method", func(w http.ResponseWriter) { MethodNotAllowed(w, http.MethodPut) }, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"rate limited", func(w http.ResponseWriter) { RateLimited(w, "slow down") }, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, stderrors.New("boom")) }, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unavailable", func(w http.ResponseWriter) { ServiceUnavailable(w, "later") }, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			decoded := decode(t, w)
			if decoded.Error == nil || decoded.Error.Code != tt.code {
				t.Errorf("expected code %s, got %+v", tt.code, decoded.Error)
			}
		})
	}
}

// TestInternalErrorHidesDetails tests that internal errors are not leaked.
func TestInternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	InternalError(w, stderrors.New("database password is hunter2"))

	decoded := decode(t, w)
	if decoded.Error.Message != "Internal server error" {
		t.Errorf("unexpected message %q", decoded.Error.Message)
	}
}

// TestErrorFromType tests the mapping of typed errors to status codes.
func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", pmerrors.NewNotFoundError("product", "p1"), http.StatusNotFound},
		{"validation", pmerrors.NewValidationError("product_id", "", "required"), http.StatusBadRequest},
		{"remote fetch", pmerrors.WrapCatalog(pmerrors.KindRemoteFetchFailed, "load", pmerrors.ErrUnavailable), http.StatusServiceUnavailable},
		{"remote write", pmerrors.WrapCatalog(pmerrors.KindRemoteWriteFailed, "toggle_favorite", pmerrors.ErrUnavailable), http.StatusServiceUnavailable},
		{"no connectivity", pmerrors.WrapCatalog(pmerrors.KindNoConnectivityNoCache, "load", pmerrors.ErrUnavailable), http.StatusServiceUnavailable},
		{"timeout", pmerrors.NewTimeoutError("list_products", "1s", "timed out"), http.StatusServiceUnavailable},
		{"deserialization", pmerrors.WrapCatalog(pmerrors.KindDeserializationFailed, "read", stderrors.New("bad")), http.StatusInternalServerError},
		{"canceled", pmerrors.WrapResource("load", "catalog", "", context.Canceled), StatusClientClosedRequest},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromType(w, tt.err)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

// TestRemoteFailureDetails tests that remote failures carry their kind.
func TestRemoteFailureDetails(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorFromType(w, pmerrors.WrapCatalog(pmerrors.KindRemoteFetchFailed, "load", pmerrors.ErrUnavailable))

	decoded := decode(t, w)
	if decoded.Error.Details != string(pmerrors.KindRemoteFetchFailed) {
		t.Errorf("expected details %q, got %q", pmerrors.KindRemoteFetchFailed, decoded.Error.Details)
	}
}
