package runner

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/scriptor-pro/ernest-export/internal/credentials"
	"github.com/scriptor-pro/ernest-export/internal/exportcfg"
	"github.com/scriptor-pro/ernest-export/internal/model"
)

// GitRunner snapshots one file into a version-control working tree by
// shelling out to the git CLI. Every check failure stops the pipeline
// immediately; no later step is attempted.
type GitRunner struct {
	ProjectRoot string
	Profile     *string
	Resolved    *exportcfg.ResolvedGit
	Creds       credentials.Store
}

func (r *GitRunner) Run(filePath string, cancel *CancelFlag, _ Sink) model.ExportResponse {
	var logs model.Logs

	if cancel.Cancelled() {
		return model.CancelledResponse(logs)
	}

	repoPath := resolvePath(r.ProjectRoot, r.Resolved.RepoPath)
	logs.Info("Running git checks", repoPath)

	if r.hasCheck(exportcfg.GitCheckRepo) {
		if _, err := runGit(repoPath, "rev-parse", "--is-inside-work-tree"); err != nil {
			return model.ErrorResponse(model.CodeGitNotARepo, "Not a git repository", err.Error(), logs)
		}
	}

	var statusOut string
	if r.hasCheck(exportcfg.GitCheckStatus) || r.hasCheck(exportcfg.GitCheckClean) {
		out, err := runGit(repoPath, "status", "--porcelain")
		if err != nil {
			return model.ErrorResponse(model.CodeGitFailed, "Unable to read git status", err.Error(), logs)
		}
		statusOut = out
		if strings.TrimSpace(statusOut) != "" {
			logs.Warn("Git status is not clean", strings.TrimSpace(statusOut))
		} else {
			logs.Info("Git status clean", "")
		}
	}

	if r.hasCheck(exportcfg.GitCheckClean) && strings.TrimSpace(statusOut) != "" {
		return model.ErrorResponse(model.CodeGitDirtyTree, "Git working tree is not clean", "", logs)
	}

	out, err := runGit(repoPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return model.ErrorResponse(model.CodeGitNotARepo, "Unable to resolve repository root", err.Error(), logs)
	}
	repoRoot := strings.TrimSpace(out)

	absFile, err := filepath.Abs(filePath)
	if err != nil {
		return model.ErrorResponse(model.CodeGitFailed, "Unable to resolve file path", err.Error(), logs)
	}
	if !insideDir(repoRoot, absFile) {
		return model.ErrorResponse(model.CodeFileNotInRepo, "File is outside the git repository", repoRoot, logs)
	}

	if cancel.Cancelled() {
		return model.CancelledResponse(logs)
	}

	logs.Info("Git add", absFile)
	if _, err := runGit(repoRoot, "add", "--", absFile); err != nil {
		return model.ErrorResponse(model.CodeGitFailed, "git add failed", err.Error(), logs)
	}

	if r.Resolved.Mode == exportcfg.GitModeAddAndCommit {
		if r.Resolved.RequireToken {
			_, found, err := r.Creds.Get(r.ProjectRoot, model.TargetGit, r.Profile, model.CredentialToken)
			if err != nil {
				return model.ErrorResponse(model.CodeGitFailed, "Unable to access credential storage", err.Error(), logs)
			}
			if !found {
				return model.ErrorResponse(model.CodeGitMissingToken, "Git token missing (set in app)", "", logs)
			}
		}

		message := "Export " + filepath.Base(absFile)
		logs.Info("Git commit", message)
		out, err := runGit(repoRoot, "commit", "-m", message)
		if nothingToCommit(out) || (err != nil && nothingToCommit(err.Error())) {
			logs.Warn("Nothing to commit", "")
			return model.OkResponse("No changes to commit", logs)
		}
		if err != nil {
			return model.ErrorResponse(model.CodeGitFailed, "git commit failed", err.Error(), logs)
		}

		if r.Resolved.Push {
			if cancel.Cancelled() {
				return model.CancelledResponse(logs)
			}
			logs.Info("Git push", "")
			if _, err := runGit(repoRoot, "push"); err != nil {
				return model.ErrorResponse(model.CodeGitFailed, "git push failed", err.Error(), logs)
			}
		}
	}

	return model.OkResponse("Git export completed", logs)
}

func (r *GitRunner) hasCheck(check exportcfg.GitCheck) bool {
	for _, c := range r.Resolved.Checks {
		if c == check {
			return true
		}
	}
	return false
}

// runGit executes one git command in dir, returning combined stdout+stderr.
// A non-zero exit becomes an error carrying the raw output verbatim so the
// caller can surface it in the "details" affordance.
func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	out := stdout.String()
	if strings.TrimSpace(stderr.String()) != "" {
		out = strings.TrimRight(out, "\n") + "\n" + stderr.String()
	}
	if err != nil {
		return out, &gitError{output: out}
	}
	return out, nil
}

type gitError struct {
	output string
}

func (e *gitError) Error() string {
	return strings.TrimSpace(e.output)
}

func nothingToCommit(out string) bool {
	return strings.Contains(out, "nothing to commit")
}

func insideDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func resolvePath(projectRoot, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}
