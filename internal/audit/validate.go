package audit

import "fmt"

// ValidateEvent checks a decoded event against the wire contract and the
// enclosing payload identity. Mismatches reject the single event, not the
// whole batch.
func ValidateEvent(e *Event, attemptID, userID string) error {
	if e.ID == "" {
		return fmt.Errorf("missing id")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("unknown type %q", e.Type)
	}
	if e.Timestamp <= 0 {
		return fmt.Errorf("missing timestamp")
	}
	if e.AttemptID == "" || e.UserID == "" {
		return fmt.Errorf("missing attemptId/userId")
	}
	if e.AttemptID != attemptID || e.UserID != userID {
		return fmt.Errorf("attemptId/userId mismatch")
	}
	return nil
}
