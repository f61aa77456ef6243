package model

// WebSocket message types
const (
	WSMessageTypeProgress = "progress"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSProgressMessage mirrors a persisted GradingEvent for live delivery.
type WSProgressMessage struct {
	Type         string           `json:"type"`
	SubmissionID string           `json:"submissionId"`
	Status       SubmissionStatus `json:"status"`
	Message      string           `json:"message"`
	Phase        *PhaseName       `json:"phase,omitempty"`
	Progress     *float64         `json:"progress,omitempty"`
}

// WSCompleteMessage announces a finished grading run with its result.
type WSCompleteMessage struct {
	Type         string            `json:"type"`
	SubmissionID string            `json:"submissionId"`
	Result       *SubmissionResult `json:"result"`
}

// WSErrorMessage represents a terminal failure.
type WSErrorMessage struct {
	Type         string  `json:"type"`
	SubmissionID string  `json:"submissionId"`
	Error        WSError `json:"error"`
}

// WSError represents error details
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
