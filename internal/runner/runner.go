// Package runner executes one export job against its target. One runner
// instance runs per job, owns that job's resolved configuration, and reports
// progress and a terminal ExportResponse back to the job manager.
package runner

import (
	"sync/atomic"
	"time"

	"github.com/scriptor-pro/ernest-export/internal/credentials"
	"github.com/scriptor-pro/ernest-export/internal/exportcfg"
	"github.com/scriptor-pro/ernest-export/internal/model"
)

// CancelFlag is the cooperative cancellation token shared between the job
// manager (writer) and the runner (reader). Runners poll it between discrete
// steps and inside transfer loops; nothing is ever stopped preemptively.
type CancelFlag struct {
	flag atomic.Bool
}

// Cancel requests cancellation. Safe to call from any goroutine.
func (c *CancelFlag) Cancel() {
	c.flag.Store(true)
}

// Cancelled reports whether cancellation was requested.
func (c *CancelFlag) Cancelled() bool {
	return c.flag.Load()
}

// Sink receives byte-level progress updates from a runner.
type Sink func(sentBytes, totalBytes int64)

// Runner performs one target's delegated external operation.
type Runner interface {
	Run(filePath string, cancel *CancelFlag, progress Sink) model.ExportResponse
}

// Options carries ambient tuning shared by all runners.
type Options struct {
	// ProgressInterval bounds how often transfer loops emit progress events.
	ProgressInterval time.Duration
}

// For resolves the effective configuration for (target, profile) and returns
// the matching runner. Resolution errors are returned synchronously so the
// caller can reject the request before any job exists. Reserved targets get
// a dedicated not-implemented runner rather than a runtime string check.
func For(
	target model.ExportTarget,
	projectRoot string,
	cfg *exportcfg.Config,
	profile *string,
	creds credentials.Store,
	opts Options,
) (Runner, *model.ExportError) {
	switch target {
	case model.TargetGit:
		resolved, err := exportcfg.ResolveGit(cfg, profile)
		if err != nil {
			return nil, err
		}
		return &GitRunner{
			ProjectRoot: projectRoot,
			Profile:     profile,
			Resolved:    resolved,
			Creds:       creds,
		}, nil

	case model.TargetFtp:
		resolved, err := exportcfg.ResolveFtp(cfg, profile)
		if err != nil {
			return nil, err
		}
		return &FtpRunner{
			ProjectRoot: projectRoot,
			Profile:     profile,
			Resolved:    resolved,
			Creds:       creds,
			Interval:    opts.ProgressInterval,
		}, nil

	case model.TargetNetlify:
		if cfg.Netlify == nil || !cfg.Netlify.Enabled {
			return nil, model.NewError(model.CodeTargetDisabled, "Netlify export is disabled", "")
		}
		return &NotImplementedRunner{Target: target}, nil

	case model.TargetVercel:
		if cfg.Vercel == nil || !cfg.Vercel.Enabled {
			return nil, model.NewError(model.CodeTargetDisabled, "Vercel export is disabled", "")
		}
		return &NotImplementedRunner{Target: target}, nil
	}

	return nil, model.NewError(model.CodeConfigInvalid, "Unknown export target", string(target))
}
