package audit

// SyncPayload is the batch request body for POST /v1/audit/logs.
type SyncPayload struct {
	Events    []*Event `json:"events"`
	AttemptID string   `json:"attemptId"`
	UserID    string   `json:"userId"`
}

// SyncResponse is the collector's reply to a sync batch. SyncedCount is the
// number of newly accepted events; ids the collector has already seen are
// deduplicated and excluded from the count without being treated as errors.
type SyncResponse struct {
	Success         bool     `json:"success"`
	SyncedCount     int      `json:"syncedCount"`
	ServerTimestamp int64    `json:"serverTimestamp"`
	Errors          []string `json:"errors,omitempty"`
}

// LogsResponse is the reply to the admin query endpoint.
type LogsResponse struct {
	Logs  []*Event `json:"logs"`
	Count int      `json:"count"`
}
