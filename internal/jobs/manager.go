// Package jobs owns the table of in-flight and completed export jobs. Each
// job runs on its own goroutine; the table is the only state shared across
// goroutines and every access goes through the manager's mutex.
package jobs

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scriptor-pro/ernest-export/internal/credentials"
	"github.com/scriptor-pro/ernest-export/internal/exportcfg"
	"github.com/scriptor-pro/ernest-export/internal/model"
	"github.com/scriptor-pro/ernest-export/internal/project"
	"github.com/scriptor-pro/ernest-export/internal/runner"
)

// EventSink receives the events the manager relays out of runners. The hub
// implements it; tests substitute a recorder.
type EventSink interface {
	BroadcastProgress(p model.ExportProgress)
	BroadcastFinished(f model.ExportFinished)
}

// Options tunes the manager.
type Options struct {
	// ProgressInterval bounds progress event rate inside transfer loops.
	ProgressInterval time.Duration
	// JobTimeout, when positive, flips a job's cancel flag after the given
	// duration. Zero means jobs run until they finish or are cancelled.
	JobTimeout time.Duration
}

type entry struct {
	job         *model.Job
	cancel      *runner.CancelFlag
	done        bool
	lastPercent float64
}

// Manager schedules export jobs and relays their progress and completion.
type Manager struct {
	mu     sync.Mutex
	jobs   map[string]*entry
	events EventSink
	creds  credentials.Store
	opts   Options

	// newRunner is swapped out by tests.
	newRunner func(target model.ExportTarget, root string, cfg *exportcfg.Config, profile *string) (runner.Runner, *model.ExportError)
}

func NewManager(events EventSink, creds credentials.Store, opts Options) *Manager {
	m := &Manager{
		jobs:   make(map[string]*entry),
		events: events,
		creds:  creds,
		opts:   opts,
	}
	m.newRunner = func(target model.ExportTarget, root string, cfg *exportcfg.Config, profile *string) (runner.Runner, *model.ExportError) {
		return runner.For(target, root, cfg, profile, m.creds, runner.Options{
			ProgressInterval: m.opts.ProgressInterval,
		})
	}
	return m
}

// Start validates the request synchronously and, if it can possibly succeed,
// allocates a job and schedules it on a fresh goroutine. Config and
// resolution failures are returned directly; no job record exists for them.
func (m *Manager) Start(req model.ExportRequest) (string, *model.ExportError) {
	fi, err := os.Stat(req.FilePath)
	if err != nil || fi.IsDir() {
		return "", model.NewError(model.CodeFileMissing, "File does not exist", req.FilePath)
	}

	root, ok := project.FindRoot(req.FilePath)
	if !ok {
		return "", model.NewError(model.CodeConfigMissing, "No .export.toml found in parent folders", "")
	}

	raw, err := os.ReadFile(project.ConfigPath(root))
	if err != nil {
		return "", model.NewError(model.CodeConfigMissing, "Unable to read .export.toml", err.Error())
	}

	cfg, err := exportcfg.Parse(raw)
	if err != nil {
		return "", model.NewError(model.CodeConfigInvalid, "Invalid .export.toml", err.Error())
	}

	if failures := exportcfg.Validate(cfg); len(failures) > 0 {
		// First failure carries the code; the rest are folded into detail so
		// nothing the validator found is lost.
		first := failures[0]
		if len(failures) > 1 {
			details := make([]string, 0, len(failures))
			for _, f := range failures {
				details = append(details, f.Error())
			}
			return "", model.NewError(first.Code, first.Message, strings.Join(details, "; "))
		}
		return "", first
	}

	r, rerr := m.newRunner(req.Target, root, cfg, req.Profile)
	if rerr != nil {
		return "", rerr
	}

	id := uuid.New().String()
	cancel := &runner.CancelFlag{}
	job := &model.Job{
		ID:        id,
		FilePath:  req.FilePath,
		Target:    req.Target,
		Profile:   req.Profile,
		Status:    model.JobStatusRunning,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[id] = &entry{job: job, cancel: cancel}
	m.mu.Unlock()

	go m.execute(id, r, req.FilePath, cancel)
	return id, nil
}

// Cancel sets the job's shared cancellation flag. The runner observes it at
// its next checkpoint; the stored status flips to cancelled right away so
// callers see the intent before the runner acknowledges.
func (m *Manager) Cancel(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.jobs[jobID]
	if !ok {
		return false
	}
	e.cancel.Cancel()
	if !e.done {
		e.job.Status = model.JobStatusCancelled
	}
	return true
}

// Cleanup removes a job's bookkeeping regardless of its status. Removing a
// running job does not stop it; cancel first if stopping is wanted. A second
// call for the same id reports false.
func (m *Manager) Cleanup(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[jobID]; !ok {
		return false
	}
	delete(m.jobs, jobID)
	return true
}

// Get returns a snapshot of one job.
func (m *Manager) Get(jobID string) (model.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.jobs[jobID]
	if !ok {
		return model.Job{}, false
	}
	return *e.job, true
}

// List returns snapshots of all tracked jobs, oldest first.
func (m *Manager) List() []model.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Job, 0, len(m.jobs))
	for _, e := range m.jobs {
		out = append(out, *e.job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *Manager) execute(id string, r runner.Runner, filePath string, cancel *runner.CancelFlag) {
	if m.opts.JobTimeout > 0 {
		timer := time.AfterFunc(m.opts.JobTimeout, func() {
			log.Printf("export job %s exceeded %s, cancelling", id, m.opts.JobTimeout)
			cancel.Cancel()
		})
		defer timer.Stop()
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("export job %s panicked: %v", id, rec)
			m.finish(id, cancel, model.ErrorResponse(
				model.CodeInternalError, "Export failed unexpectedly", fmt.Sprint(rec), nil))
		}
	}()

	resp := r.Run(filePath, cancel, m.progressSink(id))
	m.finish(id, cancel, resp)
}

// progressSink clamps percent into [0,100], keeps it non-decreasing for the
// job's lifetime, stores the snapshot and re-publishes the event. Updates
// arriving after the job finished are dropped.
func (m *Manager) progressSink(id string) runner.Sink {
	return func(sent, total int64) {
		m.mu.Lock()
		e, ok := m.jobs[id]
		if !ok || e.done {
			m.mu.Unlock()
			return
		}
		percent := 0.0
		if total > 0 {
			percent = float64(sent) / float64(total) * 100
		}
		if percent > 100 {
			percent = 100
		}
		if percent < e.lastPercent {
			percent = e.lastPercent
		}
		e.lastPercent = percent
		p := model.ExportProgress{JobID: id, SentBytes: sent, TotalBytes: total, Percent: percent}
		e.job.Progress = &p
		m.mu.Unlock()

		m.events.BroadcastProgress(p)
	}
}

// finish records the terminal state and publishes exactly one finished event.
// The stored status is cancelled only if the cancellation flag was set by
// completion time; otherwise it follows response.ok.
func (m *Manager) finish(id string, cancel *runner.CancelFlag, resp model.ExportResponse) {
	now := time.Now()

	m.mu.Lock()
	if e, ok := m.jobs[id]; ok && !e.done {
		e.done = true
		status := model.JobStatusFailed
		switch {
		case cancel.Cancelled():
			status = model.JobStatusCancelled
		case resp.Ok:
			status = model.JobStatusSuccess
		}
		e.job.Status = status
		e.job.Logs = resp.Logs
		e.job.Response = &resp
		e.job.FinishedAt = &now
	}
	m.mu.Unlock()

	m.events.BroadcastFinished(model.ExportFinished{JobID: id, Response: resp})
}
