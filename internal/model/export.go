package model

// ExportTarget identifies an export destination kind.
type ExportTarget string

const (
	TargetGit     ExportTarget = "git"
	TargetFtp     ExportTarget = "ftp"
	TargetNetlify ExportTarget = "netlify"
	TargetVercel  ExportTarget = "vercel"
)

// Stable export error codes. New failure modes get new codes; existing codes
// are never overloaded.
const (
	CodeExportCancelled          = "export_cancelled"
	CodeConfigMissing            = "config_missing"
	CodeConfigInvalid            = "config_invalid"
	CodeUnsupportedConfigVersion = "unsupported_config_version"
	CodeInvalidNetlifyConfig     = "invalid_netlify_config"
	CodeInvalidVercelConfig      = "invalid_vercel_config"
	CodeInvalidFtpProfile        = "invalid_ftp_profile"
	CodeTargetDisabled           = "target_disabled"
	CodeTargetNotImplemented     = "target_not_implemented"
	CodeProfileNotFound          = "profile_not_found"
	CodeProfileDisabled          = "profile_disabled"
	CodeFileMissing              = "file_missing"
	CodeFileNotInRepo            = "file_not_in_repo"
	CodeFtpMissingHost           = "ftp_missing_host"
	CodeFtpMissingRemotePath     = "ftp_missing_remote_path"
	CodeFtpMissingUsername       = "ftp_missing_username"
	CodeFtpMissingPassword       = "ftp_missing_password"
	CodeGitMissingToken          = "git_missing_token"
	CodeNetlifyMissingToken      = "netlify_missing_token"
	CodeGitNotARepo              = "git_not_a_repo"
	CodeGitDirtyTree             = "git_dirty_tree"
	CodeGitFailed                = "git_failed"
	CodeFtpFailed                = "ftp_failed"
	CodeInternalError            = "internal_error"
)

// ExportError is a structured, stable-coded export failure.
type ExportError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *ExportError) Error() string {
	if e.Detail != "" {
		return e.Code + ": " + e.Message + ": " + e.Detail
	}
	return e.Code + ": " + e.Message
}

// NewError builds an ExportError; detail is optional technical context kept
// verbatim for the "details" affordance.
func NewError(code, message, detail string) *ExportError {
	return &ExportError{Code: code, Message: message, Detail: detail}
}

// Log severity levels
type LogLevel string

const (
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// ExportLog is a single human-readable log entry attached to a job.
type ExportLog struct {
	Level   LogLevel `json:"level"`
	Message string   `json:"message"`
	Detail  string   `json:"detail,omitempty"`
}

// Logs accumulates entries during a runner invocation.
type Logs []ExportLog

func (l *Logs) Info(message, detail string) {
	*l = append(*l, ExportLog{Level: LogInfo, Message: message, Detail: detail})
}

func (l *Logs) Warn(message, detail string) {
	*l = append(*l, ExportLog{Level: LogWarn, Message: message, Detail: detail})
}

func (l *Logs) Error(message, detail string) {
	*l = append(*l, ExportLog{Level: LogError, Message: message, Detail: detail})
}

// ExportResponse is the terminal result of one export job.
type ExportResponse struct {
	Ok      bool         `json:"ok"`
	Summary string       `json:"summary"`
	Logs    Logs         `json:"logs"`
	Error   *ExportError `json:"error,omitempty"`
}

// ErrorResponse builds a failed ExportResponse with the accumulated logs.
func ErrorResponse(code, message, detail string, logs Logs) ExportResponse {
	return ExportResponse{
		Ok:      false,
		Summary: message,
		Logs:    logs,
		Error:   NewError(code, message, detail),
	}
}

// CancelledResponse builds the terminal response for a cancelled job.
// Cancellation is a distinct terminal status, never coerced into a plain
// failure.
func CancelledResponse(logs Logs) ExportResponse {
	logs.Warn("Export cancelled", "")
	return ExportResponse{
		Ok:      false,
		Summary: "Export cancelled",
		Logs:    logs,
		Error:   NewError(CodeExportCancelled, "Export cancelled", ""),
	}
}

// OkResponse builds a successful ExportResponse.
func OkResponse(summary string, logs Logs) ExportResponse {
	return ExportResponse{Ok: true, Summary: summary, Logs: logs}
}

// ExportProgress is a byte-level progress snapshot for one job. Percent is
// non-decreasing within a job and bounded to [0,100].
type ExportProgress struct {
	JobID      string  `json:"jobId"`
	SentBytes  int64   `json:"sentBytes"`
	TotalBytes int64   `json:"totalBytes"`
	Percent    float64 `json:"percent"`
}

// ExportFinished is published exactly once per job.
type ExportFinished struct {
	JobID    string         `json:"jobId"`
	Response ExportResponse `json:"response"`
}

// Credential kinds
type CredentialKind string

const (
	CredentialPassword CredentialKind = "password"
	CredentialToken    CredentialKind = "token"
)
