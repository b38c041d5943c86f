package model

// WebSocket message types
const (
	WSMessageTypeStatus   = "status"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSStatusMessage announces a status transition
type WSStatusMessage struct {
	Type   string    `json:"type"`
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
}

// WSCompleteMessage announces completion with the final manifest
type WSCompleteMessage struct {
	Type     string              `json:"type"`
	JobID    string              `json:"jobId"`
	Manifest map[string]Artifact `json:"manifest"`
}

// WSErrorMessage announces terminal failure
type WSErrorMessage struct {
	Type  string  `json:"type"`
	JobID string  `json:"jobId"`
	Error WSError `json:"error"`
}

// WSError carries error details
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
