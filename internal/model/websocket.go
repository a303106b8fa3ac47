package model

// WebSocket message types
const (
	WSMessageTypeProgress = "progress"
	WSMessageTypeFinished = "finished"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSProgressMessage carries an export:progress event
type WSProgressMessage struct {
	Type string `json:"type"`
	ExportProgress
}

// WSFinishedMessage carries an export:finished event
type WSFinishedMessage struct {
	Type     string         `json:"type"`
	JobID    string         `json:"jobId"`
	Response ExportResponse `json:"response"`
}
