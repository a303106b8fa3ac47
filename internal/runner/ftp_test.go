package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptor-pro/ernest-export/internal/exportcfg"
	"github.com/scriptor-pro/ernest-export/internal/model"
)

func TestResolveRemotePath(t *testing.T) {
	assert.Equal(t, "/srv/www/chapter.md", resolveRemotePath("/srv/www/", "/home/u/chapter.md"))
	assert.Equal(t, "/srv/www/renamed.md", resolveRemotePath("/srv/www/renamed.md", "/home/u/chapter.md"))
}

func TestResolveUsername(t *testing.T) {
	assert.Equal(t, "deploy", resolveUsername("deploy"))
	assert.Equal(t, "deploy", resolveUsername("  deploy  "))

	t.Setenv("USER", "fallback")
	assert.Equal(t, "fallback", resolveUsername(""))

	t.Setenv("USER", "")
	assert.Equal(t, "", resolveUsername("   "))
}

func TestFtpRunnerMissingUsername(t *testing.T) {
	t.Setenv("USER", "")

	file := filepath.Join(t.TempDir(), "chapter.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	r := &FtpRunner{
		ProjectRoot: filepath.Dir(file),
		Resolved: &exportcfg.ResolvedFtp{
			Protocol:   exportcfg.ProtocolSftp,
			Host:       "example.com",
			Port:       22,
			RemotePath: "/srv/www/",
		},
		Creds: testStore(),
	}

	resp := r.Run(file, &CancelFlag{}, nil)
	require.False(t, resp.Ok)
	require.NotNil(t, resp.Error)
	assert.Equal(t, model.CodeFtpMissingUsername, resp.Error.Code)
}

func TestFtpRunnerMissingFile(t *testing.T) {
	r := &FtpRunner{
		ProjectRoot: t.TempDir(),
		Resolved: &exportcfg.ResolvedFtp{
			Protocol:   exportcfg.ProtocolSftp,
			Host:       "example.com",
			Port:       22,
			Username:   "deploy",
			RemotePath: "/srv/www/",
		},
		Creds: testStore(),
	}

	resp := r.Run(filepath.Join(t.TempDir(), "absent.md"), &CancelFlag{}, nil)
	require.False(t, resp.Ok)
	require.NotNil(t, resp.Error)
	assert.Equal(t, model.CodeFtpFailed, resp.Error.Code)
}

func TestFtpRunnerSftpNeedsPasswordOrAgent(t *testing.T) {
	// No SSH agent and no stored credential leaves SFTP without any auth
	// method; that maps to the retryable missing-password code, not a
	// transport failure.
	t.Setenv("SSH_AUTH_SOCK", "")

	file := filepath.Join(t.TempDir(), "chapter.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	r := &FtpRunner{
		ProjectRoot: filepath.Dir(file),
		Resolved: &exportcfg.ResolvedFtp{
			Protocol:   exportcfg.ProtocolSftp,
			Host:       "example.com",
			Port:       22,
			Username:   "deploy",
			RemotePath: "/srv/www/",
		},
		Creds: testStore(),
	}

	resp := r.Run(file, &CancelFlag{}, nil)
	require.False(t, resp.Ok)
	require.NotNil(t, resp.Error)
	assert.Equal(t, model.CodeFtpMissingPassword, resp.Error.Code)
}

func TestFtpRunnerPlainFtpNeedsPassword(t *testing.T) {
	t.Setenv(envFtpPassword, "")

	file := filepath.Join(t.TempDir(), "chapter.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	r := &FtpRunner{
		ProjectRoot: filepath.Dir(file),
		Resolved: &exportcfg.ResolvedFtp{
			Protocol:   exportcfg.ProtocolFtp,
			Host:       "example.com",
			Port:       21,
			Username:   "deploy",
			RemotePath: "/srv/www/",
		},
		Creds: testStore(),
	}

	resp := r.Run(file, &CancelFlag{}, nil)
	require.False(t, resp.Ok)
	require.NotNil(t, resp.Error)
	assert.Equal(t, model.CodeFtpMissingPassword, resp.Error.Code)
}

func TestFtpRunnerPreCancelled(t *testing.T) {
	r := &FtpRunner{
		ProjectRoot: t.TempDir(),
		Resolved:    &exportcfg.ResolvedFtp{Protocol: exportcfg.ProtocolSftp},
		Creds:       testStore(),
	}

	cancel := &CancelFlag{}
	cancel.Cancel()
	resp := r.Run("/tmp/whatever.md", cancel, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, model.CodeExportCancelled, resp.Error.Code)
}
