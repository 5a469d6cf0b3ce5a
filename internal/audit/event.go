// Package audit defines the audit event model shared by the capture agent
// and the collector, together with the sync wire contract.
package audit

// EventType identifies the detected action category. The set is closed:
// the collector rejects events whose type it does not recognize.
type EventType string

const (
	TypeCopyAttempt       EventType = "COPY_ATTEMPT"
	TypePasteAttempt      EventType = "PASTE_ATTEMPT"
	TypeCutAttempt        EventType = "CUT_ATTEMPT"
	TypeRightClickAttempt EventType = "RIGHT_CLICK_ATTEMPT"
	TypeSelectAllAttempt  EventType = "SELECT_ALL_ATTEMPT"
	TypePrintAttempt      EventType = "PRINT_ATTEMPT"
	TypeSaveAttempt       EventType = "SAVE_ATTEMPT"
	TypeDevtoolsAttempt   EventType = "DEVTOOLS_ATTEMPT"
	TypeDragAttempt       EventType = "DRAG_ATTEMPT"
	TypeDropAttempt       EventType = "DROP_ATTEMPT"
	TypeSelectionAttempt  EventType = "SELECTION_ATTEMPT"
	TypeTabBlur           EventType = "TAB_BLUR"
	TypeTabFocus          EventType = "TAB_FOCUS"
	TypeWindowBlur        EventType = "WINDOW_BLUR"
	TypeWindowFocus       EventType = "WINDOW_FOCUS"
	TypeFullscreenEnter   EventType = "FULLSCREEN_ENTER"
	TypeFullscreenExit    EventType = "FULLSCREEN_EXIT"
	TypeHeartbeat         EventType = "HEARTBEAT"
	TypeTimeExpired       EventType = "TIME_EXPIRED"
	TypePageRefresh       EventType = "PAGE_REFRESH"
	TypeTestStart         EventType = "TEST_START"
	TypeTestSubmit        EventType = "TEST_SUBMIT"
)

// knownTypes is the closed set used for validation.
var knownTypes = map[EventType]struct{}{
	TypeCopyAttempt:       {},
	TypePasteAttempt:      {},
	TypeCutAttempt:        {},
	TypeRightClickAttempt: {},
	TypeSelectAllAttempt:  {},
	TypePrintAttempt:      {},
	TypeSaveAttempt:       {},
	TypeDevtoolsAttempt:   {},
	TypeDragAttempt:       {},
	TypeDropAttempt:       {},
	TypeSelectionAttempt:  {},
	TypeTabBlur:           {},
	TypeTabFocus:          {},
	TypeWindowBlur:        {},
	TypeWindowFocus:       {},
	TypeFullscreenEnter:   {},
	TypeFullscreenExit:    {},
	TypeHeartbeat:         {},
	TypeTimeExpired:       {},
	TypePageRefresh:       {},
	TypeTestStart:         {},
	TypeTestSubmit:        {},
}

// Valid reports whether t is one of the recognized event types.
func (t EventType) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// Metadata is the environment snapshot captured alongside every event.
type Metadata struct {
	Browser    string         `json:"browser"`
	OS         string         `json:"os"`
	FocusState bool           `json:"focusState"`
	Fullscreen bool           `json:"fullscreen"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Event is one audit record for a detected or timed occurrence during an
// attempt. Events are immutable once created; only Synced changes, and only
// after the collector confirms receipt.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  int64     `json:"timestamp"` // milliseconds since epoch
	AttemptID  string    `json:"attemptId"`
	UserID     string    `json:"userId"`
	QuestionID string    `json:"questionId,omitempty"`
	Metadata   Metadata  `json:"metadata"`
	Synced     bool      `json:"synced,omitempty"`
}
