package runner

import (
	"fmt"

	"github.com/scriptor-pro/ernest-export/internal/model"
)

// NotImplementedRunner covers the reserved deploy-trigger targets (netlify,
// vercel). Invoking one fails fast with a stable code; it never silently
// no-ops.
type NotImplementedRunner struct {
	Target model.ExportTarget
}

func (r *NotImplementedRunner) Run(_ string, cancel *CancelFlag, _ Sink) model.ExportResponse {
	var logs model.Logs
	if cancel.Cancelled() {
		return model.CancelledResponse(logs)
	}
	return model.ErrorResponse(
		model.CodeTargetNotImplemented,
		fmt.Sprintf("%s export is not implemented yet", r.Target),
		"",
		logs,
	)
}
