package runner

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/scriptor-pro/ernest-export/internal/credentials"
	"github.com/scriptor-pro/ernest-export/internal/exportcfg"
	"github.com/scriptor-pro/ernest-export/internal/model"
)

// initRepo creates a git repository with local identity so commits work in CI.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func gitRunner(root string, resolved *exportcfg.ResolvedGit) *GitRunner {
	keyring.MockInit()
	return &GitRunner{
		ProjectRoot: root,
		Resolved:    resolved,
		Creds:       credentials.NewKeychain("ernest-export-test"),
	}
}

func TestGitRunnerAddOnly(t *testing.T) {
	repo := initRepo(t)
	file := writeFile(t, repo, "chapter.md", "# one\n")

	r := gitRunner(repo, &exportcfg.ResolvedGit{
		RepoPath: ".",
		Mode:     exportcfg.GitModeAddOnly,
		Checks:   []exportcfg.GitCheck{exportcfg.GitCheckRepo, exportcfg.GitCheckStatus},
	})

	resp := r.Run(file, &CancelFlag{}, nil)
	require.True(t, resp.Ok, "response: %+v", resp)

	// File is staged but not committed.
	out, err := runGit(repo, "diff", "--cached", "--name-only")
	require.NoError(t, err)
	assert.Contains(t, out, "chapter.md")
}

func TestGitRunnerAddAndCommit(t *testing.T) {
	repo := initRepo(t)
	file := writeFile(t, repo, "chapter.md", "# one\n")

	r := gitRunner(repo, &exportcfg.ResolvedGit{
		RepoPath: ".",
		Mode:     exportcfg.GitModeAddAndCommit,
		Checks:   []exportcfg.GitCheck{exportcfg.GitCheckRepo},
	})

	resp := r.Run(file, &CancelFlag{}, nil)
	require.True(t, resp.Ok, "response: %+v", resp)

	out, err := runGit(repo, "log", "--oneline", "-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Export chapter.md")
}

func TestGitRunnerNothingToCommit(t *testing.T) {
	repo := initRepo(t)
	file := writeFile(t, repo, "chapter.md", "# one\n")

	resolved := &exportcfg.ResolvedGit{
		RepoPath: ".",
		Mode:     exportcfg.GitModeAddAndCommit,
		Checks:   []exportcfg.GitCheck{exportcfg.GitCheckRepo},
	}
	r := gitRunner(repo, resolved)

	resp := r.Run(file, &CancelFlag{}, nil)
	require.True(t, resp.Ok)

	// Second export of the unchanged file still succeeds.
	resp = r.Run(file, &CancelFlag{}, nil)
	require.True(t, resp.Ok, "response: %+v", resp)
	assert.Equal(t, "No changes to commit", resp.Summary)
}

func TestGitRunnerNotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	file := writeFile(t, dir, "chapter.md", "x\n")

	r := gitRunner(dir, &exportcfg.ResolvedGit{
		RepoPath: ".",
		Mode:     exportcfg.GitModeAddOnly,
		Checks:   []exportcfg.GitCheck{exportcfg.GitCheckRepo},
	})

	resp := r.Run(file, &CancelFlag{}, nil)
	require.False(t, resp.Ok)
	require.NotNil(t, resp.Error)
	assert.Equal(t, model.CodeGitNotARepo, resp.Error.Code)
}

func TestGitRunnerCleanCheckRejectsDirtyTree(t *testing.T) {
	repo := initRepo(t)
	file := writeFile(t, repo, "chapter.md", "# one\n")

	r := gitRunner(repo, &exportcfg.ResolvedGit{
		RepoPath: ".",
		Mode:     exportcfg.GitModeAddAndCommit,
		Checks:   []exportcfg.GitCheck{exportcfg.GitCheckRepo, exportcfg.GitCheckClean},
	})

	// The untracked file itself makes the tree dirty.
	resp := r.Run(file, &CancelFlag{}, nil)
	require.False(t, resp.Ok)
	require.NotNil(t, resp.Error)
	assert.Equal(t, model.CodeGitDirtyTree, resp.Error.Code)
	// The dirty status was logged as a warning before failing.
	var warned bool
	for _, l := range resp.Logs {
		if l.Level == model.LogWarn {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestGitRunnerFileOutsideRepo(t *testing.T) {
	repo := initRepo(t)
	outside := writeFile(t, t.TempDir(), "stray.md", "x\n")

	r := gitRunner(repo, &exportcfg.ResolvedGit{
		RepoPath: ".",
		Mode:     exportcfg.GitModeAddOnly,
		Checks:   []exportcfg.GitCheck{exportcfg.GitCheckRepo},
	})

	resp := r.Run(outside, &CancelFlag{}, nil)
	require.False(t, resp.Ok)
	require.NotNil(t, resp.Error)
	assert.Equal(t, model.CodeFileNotInRepo, resp.Error.Code)
}

func TestGitRunnerRequireTokenMissing(t *testing.T) {
	repo := initRepo(t)
	file := writeFile(t, repo, "chapter.md", "# one\n")

	r := gitRunner(repo, &exportcfg.ResolvedGit{
		RepoPath:     ".",
		Mode:         exportcfg.GitModeAddAndCommit,
		Checks:       []exportcfg.GitCheck{exportcfg.GitCheckRepo},
		RequireToken: true,
	})

	resp := r.Run(file, &CancelFlag{}, nil)
	require.False(t, resp.Ok)
	require.NotNil(t, resp.Error)
	assert.Equal(t, model.CodeGitMissingToken, resp.Error.Code)

	// With a stored token the same export goes through.
	require.NoError(t, r.Creds.Set(repo, model.TargetGit, nil, model.CredentialToken, "tok"))
	resp = r.Run(file, &CancelFlag{}, nil)
	assert.True(t, resp.Ok, "response: %+v", resp)
}

func TestGitRunnerPreCancelled(t *testing.T) {
	repo := initRepo(t)
	file := writeFile(t, repo, "chapter.md", "x\n")

	r := gitRunner(repo, &exportcfg.ResolvedGit{
		RepoPath: ".",
		Mode:     exportcfg.GitModeAddOnly,
		Checks:   []exportcfg.GitCheck{exportcfg.GitCheckRepo},
	})

	cancel := &CancelFlag{}
	cancel.Cancel()
	resp := r.Run(file, cancel, nil)
	require.False(t, resp.Ok)
	require.NotNil(t, resp.Error)
	assert.Equal(t, model.CodeExportCancelled, resp.Error.Code)
}

func TestInsideDir(t *testing.T) {
	assert.True(t, insideDir("/repo", "/repo/a/b.md"))
	assert.True(t, insideDir("/repo", "/repo"))
	assert.False(t, insideDir("/repo", "/other/b.md"))
	assert.False(t, insideDir("/repo", "/repository/b.md"))
}
