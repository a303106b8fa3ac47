// Package exportcfg parses, validates and resolves the per-project
// .export.toml configuration. The parsed form is owned by a single job and
// re-read from disk for every job, so edits between jobs always take effect.
package exportcfg

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// SupportedVersion is the only config schema version this engine accepts.
const SupportedVersion = 1

// GitMode selects what the git runner does after its checks pass.
type GitMode string

const (
	GitModeAddOnly      GitMode = "add-only"
	GitModeAddAndCommit GitMode = "add-and-commit"
)

func (m *GitMode) UnmarshalText(text []byte) error {
	switch GitMode(text) {
	case GitModeAddOnly, GitModeAddAndCommit:
		*m = GitMode(text)
		return nil
	}
	return fmt.Errorf("unknown git mode %q", text)
}

// GitCheck is a pre-flight check the git runner performs before staging.
type GitCheck string

const (
	GitCheckRepo   GitCheck = "repo"
	GitCheckStatus GitCheck = "status"
	GitCheckClean  GitCheck = "clean"
)

func (c *GitCheck) UnmarshalText(text []byte) error {
	switch GitCheck(text) {
	case GitCheckRepo, GitCheckStatus, GitCheckClean:
		*c = GitCheck(text)
		return nil
	}
	return fmt.Errorf("unknown git check %q", text)
}

// FtpProtocol selects the file-transfer protocol.
type FtpProtocol string

const (
	ProtocolFtp  FtpProtocol = "ftp"
	ProtocolSftp FtpProtocol = "sftp"
)

func (p *FtpProtocol) UnmarshalText(text []byte) error {
	switch FtpProtocol(text) {
	case ProtocolFtp, ProtocolSftp:
		*p = FtpProtocol(text)
		return nil
	}
	return fmt.Errorf("unknown ftp protocol %q", text)
}

// VercelEnvironment selects the deploy environment for the reserved vercel
// target.
type VercelEnvironment string

const (
	VercelProduction VercelEnvironment = "production"
	VercelPreview    VercelEnvironment = "preview"
)

func (e *VercelEnvironment) UnmarshalText(text []byte) error {
	switch VercelEnvironment(text) {
	case VercelProduction, VercelPreview:
		*e = VercelEnvironment(text)
		return nil
	}
	return fmt.Errorf("unknown vercel environment %q", text)
}

// Config is the root of the declarative per-project export configuration.
// A target section that is entirely absent is equivalent to enabled=false
// with no profiles.
type Config struct {
	Version int            `toml:"version"`
	Git     *GitConfig     `toml:"git"`
	Ftp     *FtpConfig     `toml:"ftp"`
	Netlify *NetlifyConfig `toml:"netlify"`
	Vercel  *VercelConfig  `toml:"vercel"`
}

// GitConfig holds git target defaults plus named profile overrides.
type GitConfig struct {
	Enabled      bool                  `toml:"enabled"`
	Mode         *GitMode              `toml:"mode"`
	Checks       []GitCheck            `toml:"checks"`
	Push         *bool                 `toml:"push"`
	RequireToken *bool                 `toml:"require-token"`
	Profiles     map[string]GitProfile `toml:"profiles"`
}

// GitProfile contains overrides only; absent fields fall back to the target
// defaults, never straight to hard-coded fallbacks.
type GitProfile struct {
	Enabled      bool       `toml:"enabled"`
	RepoPath     *string    `toml:"repo_path"`
	Mode         *GitMode   `toml:"mode"`
	Checks       []GitCheck `toml:"checks"`
	Push         *bool      `toml:"push"`
	RequireToken *bool      `toml:"require-token"`
}

// FtpConfig holds ftp target defaults plus named profile overrides. Host and
// remote_path are usually per-profile but may be given here as defaults.
type FtpConfig struct {
	Enabled    bool                  `toml:"enabled"`
	Protocol   *FtpProtocol          `toml:"protocol"`
	Host       *string               `toml:"host"`
	Port       *int                  `toml:"port"`
	Username   *string               `toml:"username"`
	RemotePath *string               `toml:"remote_path"`
	Profiles   map[string]FtpProfile `toml:"profiles"`
}

type FtpProfile struct {
	Enabled    bool    `toml:"enabled"`
	Host       *string `toml:"host"`
	Port       *int    `toml:"port"`
	Username   *string `toml:"username"`
	RemotePath *string `toml:"remote_path"`
}

// NetlifyConfig is a reserved deploy-trigger target. It is validated but not
// yet executable.
type NetlifyConfig struct {
	Enabled       bool    `toml:"enabled"`
	SiteID        *string `toml:"site_id"`
	TriggerDeploy bool    `toml:"trigger_deploy"`
}

// VercelConfig is a reserved deploy-trigger target.
type VercelConfig struct {
	Enabled       bool              `toml:"enabled"`
	ProjectName   *string           `toml:"project_name"`
	DeployHookURL *string           `toml:"deploy_hook_url"`
	Environment   VercelEnvironment `toml:"environment"`
}

// Parse decodes a raw .export.toml document. No defaulting happens here;
// defaults are applied during resolution so that profile precedence stays
// observable.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(raw), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
