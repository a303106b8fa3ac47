package model

import "time"

// Job status
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusSuccess   JobStatus = "success"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job represents one export attempt. Created when a start request is
// accepted; removed from the table only by an explicit cleanup call, so a
// caller can always retrieve the final state before reclaiming it.
type Job struct {
	ID         string          `json:"id"`
	FilePath   string          `json:"filePath"`
	Target     ExportTarget    `json:"target"`
	Profile    *string         `json:"profile,omitempty"`
	Status     JobStatus       `json:"status"`
	Logs       Logs            `json:"logs"`
	Progress   *ExportProgress `json:"progress,omitempty"`
	Response   *ExportResponse `json:"response,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
}
