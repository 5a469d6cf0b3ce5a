package collector

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/groblegark/proctor/internal/audit"
	"github.com/groblegark/proctor/internal/collector/store"
	"github.com/groblegark/proctor/internal/events"
)

func newTestHandler(t *testing.T, authToken string) (http.Handler, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	srv := NewServer(st, &events.NoopPublisher{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return srv.NewHTTPHandler(authToken), st
}

func submit(t *testing.T, h http.Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/audit/logs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeSyncResponse(t *testing.T, w *httptest.ResponseRecorder) audit.SyncResponse {
	t.Helper()
	var resp audit.SyncResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return resp
}

func validEvent(id string, ts int64) *audit.Event {
	return &audit.Event{
		ID:        id,
		Type:      audit.TypeCopyAttempt,
		Timestamp: ts,
		AttemptID: "att-1",
		UserID:    "user-1",
	}
}

func validPayload(events ...*audit.Event) *audit.SyncPayload {
	return &audit.SyncPayload{Events: events, AttemptID: "att-1", UserID: "user-1"}
}

func TestSubmitBatchStoresEvents(t *testing.T) {
	h, st := newTestHandler(t, "")

	w := submit(t, h, validPayload(validEvent("evt-a", 1), validEvent("evt-b", 2)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeSyncResponse(t, w)
	if !resp.Success || resp.SyncedCount != 2 {
		t.Errorf("response = %+v", resp)
	}
	if resp.ServerTimestamp <= 0 {
		t.Errorf("serverTimestamp = %d, want positive epoch millis", resp.ServerTimestamp)
	}
	if len(resp.Errors) != 0 {
		t.Errorf("errors = %v, want none", resp.Errors)
	}

	stored, err := st.ListEvents(t.Context(), "att-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Errorf("stored = %d events, want 2", len(stored))
	}
}

func TestSubmitBatchDeduplicatesResends(t *testing.T) {
	h, _ := newTestHandler(t, "")

	if w := submit(t, h, validPayload(validEvent("evt-a", 1))); w.Code != http.StatusOK {
		t.Fatalf("first submit: %d", w.Code)
	}
	// At-least-once delivery: the agent may resend after a lost response.
	w := submit(t, h, validPayload(validEvent("evt-a", 1), validEvent("evt-b", 2)))
	if w.Code != http.StatusOK {
		t.Fatalf("second submit: %d", w.Code)
	}
	resp := decodeSyncResponse(t, w)
	if resp.SyncedCount != 1 {
		t.Errorf("syncedCount = %d, want 1 (evt-a is a duplicate)", resp.SyncedCount)
	}
}

func TestSubmitBatchItemizesInvalidEvents(t *testing.T) {
	h, st := newTestHandler(t, "")

	bad := validEvent("evt-bad", 2)
	bad.Type = "NOT_A_TYPE"
	mismatched := validEvent("evt-other", 3)
	mismatched.AttemptID = "att-999"

	w := submit(t, h, validPayload(validEvent("evt-a", 1), bad, mismatched))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when at least one event is valid", w.Code)
	}
	resp := decodeSyncResponse(t, w)
	if resp.SyncedCount != 1 {
		t.Errorf("syncedCount = %d, want 1", resp.SyncedCount)
	}
	if len(resp.Errors) != 2 {
		t.Fatalf("errors = %v, want 2 itemized", resp.Errors)
	}
	if !strings.HasPrefix(resp.Errors[0], "Event 1:") || !strings.HasPrefix(resp.Errors[1], "Event 2:") {
		t.Errorf("errors not itemized by index: %v", resp.Errors)
	}

	stored, err := st.ListEvents(t.Context(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Errorf("stored = %d events, want only the valid one", len(stored))
	}
}

func TestSubmitBatchAllInvalidRejected(t *testing.T) {
	h, _ := newTestHandler(t, "")

	bad := validEvent("", 0)
	w := submit(t, h, validPayload(bad))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeSyncResponse(t, w)
	if resp.Success {
		t.Error("success must be false for a fully rejected batch")
	}
	if len(resp.Errors) != 1 {
		t.Errorf("errors = %v", resp.Errors)
	}
}

func TestSubmitBatchEmptyPayloadRejected(t *testing.T) {
	h, _ := newTestHandler(t, "")

	w := submit(t, h, validPayload())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSubmitBatchMalformedBody(t *testing.T) {
	h, _ := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/audit/logs", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetLogsFiltersAndCounts(t *testing.T) {
	h, _ := newTestHandler(t, "")

	other := validEvent("evt-x", 5)
	other.AttemptID = "att-2"
	submit(t, h, validPayload(validEvent("evt-a", 1), validEvent("evt-b", 2)))
	submit(t, h, &audit.SyncPayload{Events: []*audit.Event{other}, AttemptID: "att-2", UserID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/v1/audit/logs?attemptId=att-1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp audit.LogsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || len(resp.Logs) != 2 {
		t.Errorf("response = %+v", resp)
	}
}

func TestGetLogsEmptyIsNotNull(t *testing.T) {
	h, _ := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/audit/logs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), `"logs":[]`) {
		t.Errorf("empty archive should serialize as [], got %s", w.Body.String())
	}
}

func TestClearLogs(t *testing.T) {
	h, st := newTestHandler(t, "")

	submit(t, h, validPayload(validEvent("evt-a", 1)))

	req := httptest.NewRequest(http.MethodDelete, "/v1/audit/logs?attemptId=att-1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	rest, err := st.ListEvents(t.Context(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Errorf("remaining = %d events, want 0", len(rest))
	}
}

func TestAuthRequiredWhenTokenSet(t *testing.T) {
	h, _ := newTestHandler(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/v1/audit/logs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without credentials", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/audit/logs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 with bad token", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/audit/logs", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with valid token", w.Code)
	}
}

func TestHealthExemptFromAuth(t *testing.T) {
	h, _ := newTestHandler(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}
