package audit

import (
	"encoding/json"
	"testing"
)

func TestEventTypeValid(t *testing.T) {
	valid := []EventType{
		TypeCopyAttempt, TypeHeartbeat, TypeTimeExpired, TypeTestSubmit,
		TypeDevtoolsAttempt, TypeSelectionAttempt,
	}
	for _, et := range valid {
		if !et.Valid() {
			t.Errorf("%s: expected valid", et)
		}
	}
	for _, et := range []EventType{"", "BANANA", "copy_attempt"} {
		if et.Valid() {
			t.Errorf("%q: expected invalid", et)
		}
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{AttemptID: "a1", UserID: "u1", Duration: 300}.Normalize()
	if cfg.HeartbeatInterval != DefaultHeartbeatInterval {
		t.Errorf("heartbeat interval = %d, want %d", cfg.HeartbeatInterval, DefaultHeartbeatInterval)
	}
	if cfg.SyncInterval != DefaultSyncInterval {
		t.Errorf("sync interval = %d, want %d", cfg.SyncInterval, DefaultSyncInterval)
	}

	// Explicit values are kept.
	cfg = Config{HeartbeatInterval: 5, SyncInterval: 10}.Normalize()
	if cfg.HeartbeatInterval != 5 || cfg.SyncInterval != 10 {
		t.Errorf("explicit intervals changed: %+v", cfg)
	}
}

func TestValidateEvent(t *testing.T) {
	base := Event{
		ID:        "evt-1",
		Type:      TypeCopyAttempt,
		Timestamp: 1700000000000,
		AttemptID: "attempt-1",
		UserID:    "user-1",
	}

	tests := []struct {
		name    string
		mutate  func(*Event)
		wantErr bool
	}{
		{"valid", func(*Event) {}, false},
		{"missing id", func(e *Event) { e.ID = "" }, true},
		{"unknown type", func(e *Event) { e.Type = "NOPE" }, true},
		{"zero timestamp", func(e *Event) { e.Timestamp = 0 }, true},
		{"attempt mismatch", func(e *Event) { e.AttemptID = "other" }, true},
		{"user mismatch", func(e *Event) { e.UserID = "other" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mutate(&e)
			err := ValidateEvent(&e, "attempt-1", "user-1")
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventJSONShape(t *testing.T) {
	e := Event{
		ID:        "evt-x",
		Type:      TypeHeartbeat,
		Timestamp: 42,
		AttemptID: "a",
		UserID:    "u",
		Metadata:  Metadata{Browser: "Chrome 120", OS: "Linux", FocusState: true},
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	// Field names are part of the wire contract with the collector.
	for _, key := range []string{"id", "type", "timestamp", "attemptId", "userId", "metadata"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing wire field %q", key)
		}
	}
	if _, ok := m["questionId"]; ok {
		t.Error("empty questionId should be omitted")
	}
}
