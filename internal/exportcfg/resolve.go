package exportcfg

import (
	"github.com/scriptor-pro/ernest-export/internal/model"
)

// Hard-coded fallbacks, applied only when neither the profile nor the target
// section defines a field.
const (
	defaultRepoPath = "."
	defaultFtpPort  = 22
)

// ResolvedGit is the flattened, executable git configuration for one job.
type ResolvedGit struct {
	RepoPath     string
	Mode         GitMode
	Checks       []GitCheck
	Push         bool
	RequireToken bool
}

// ResolvedFtp is the flattened, executable ftp configuration for one job.
type ResolvedFtp struct {
	Protocol   FtpProtocol
	Host       string
	Port       int
	Username   string
	RemotePath string
}

// ResolveGit merges profile override → target default → hard-coded fallback
// for the git target. With no profile requested the target defaults apply
// directly, even when every profile is disabled.
func ResolveGit(cfg *Config, profileName *string) (*ResolvedGit, *model.ExportError) {
	if cfg.Git == nil || !cfg.Git.Enabled {
		return nil, model.NewError(model.CodeTargetDisabled, "Git export is disabled", "")
	}

	var profile *GitProfile
	if profileName != nil {
		p, err := lookupGitProfile(cfg.Git, *profileName)
		if err != nil {
			return nil, err
		}
		profile = p
	}

	resolved := &ResolvedGit{
		RepoPath: defaultRepoPath,
		Mode:     GitModeAddOnly,
		Checks:   []GitCheck{GitCheckRepo},
	}
	if cfg.Git.Mode != nil {
		resolved.Mode = *cfg.Git.Mode
	}
	if cfg.Git.Checks != nil {
		resolved.Checks = cfg.Git.Checks
	}
	if cfg.Git.Push != nil {
		resolved.Push = *cfg.Git.Push
	}
	if cfg.Git.RequireToken != nil {
		resolved.RequireToken = *cfg.Git.RequireToken
	}
	if profile != nil {
		if profile.RepoPath != nil {
			resolved.RepoPath = *profile.RepoPath
		}
		if profile.Mode != nil {
			resolved.Mode = *profile.Mode
		}
		if profile.Checks != nil {
			resolved.Checks = profile.Checks
		}
		if profile.Push != nil {
			resolved.Push = *profile.Push
		}
		if profile.RequireToken != nil {
			resolved.RequireToken = *profile.RequireToken
		}
	}
	return resolved, nil
}

// ResolveFtp merges profile override → target default → hard-coded fallback
// for the ftp target. Host and remote_path must be present somewhere in the
// chain; their absence is a normal job-start-time error, not a validation
// failure, because profile selection happens at job start.
func ResolveFtp(cfg *Config, profileName *string) (*ResolvedFtp, *model.ExportError) {
	if cfg.Ftp == nil || !cfg.Ftp.Enabled {
		return nil, model.NewError(model.CodeTargetDisabled, "FTP export is disabled", "")
	}

	var profile *FtpProfile
	if profileName != nil {
		p, err := lookupFtpProfile(cfg.Ftp, *profileName)
		if err != nil {
			return nil, err
		}
		profile = p
	}

	resolved := &ResolvedFtp{
		Protocol: ProtocolSftp,
		Port:     defaultFtpPort,
	}
	if cfg.Ftp.Protocol != nil {
		resolved.Protocol = *cfg.Ftp.Protocol
	}
	if cfg.Ftp.Host != nil {
		resolved.Host = *cfg.Ftp.Host
	}
	if cfg.Ftp.Port != nil {
		resolved.Port = *cfg.Ftp.Port
	}
	if cfg.Ftp.Username != nil {
		resolved.Username = *cfg.Ftp.Username
	}
	if cfg.Ftp.RemotePath != nil {
		resolved.RemotePath = *cfg.Ftp.RemotePath
	}
	if profile != nil {
		if profile.Host != nil {
			resolved.Host = *profile.Host
		}
		if profile.Port != nil {
			resolved.Port = *profile.Port
		}
		if profile.Username != nil {
			resolved.Username = *profile.Username
		}
		if profile.RemotePath != nil {
			resolved.RemotePath = *profile.RemotePath
		}
	}

	if resolved.Host == "" {
		return nil, model.NewError(model.CodeFtpMissingHost, "FTP host is missing", "")
	}
	if resolved.RemotePath == "" {
		return nil, model.NewError(model.CodeFtpMissingRemotePath, "FTP remote path is missing", "")
	}
	return resolved, nil
}

func lookupGitProfile(git *GitConfig, name string) (*GitProfile, *model.ExportError) {
	profile, ok := git.Profiles[name]
	if !ok {
		return nil, model.NewError(model.CodeProfileNotFound, "Git profile not found", name)
	}
	if !profile.Enabled {
		return nil, model.NewError(model.CodeProfileDisabled, "Git profile is disabled", name)
	}
	return &profile, nil
}

func lookupFtpProfile(ftp *FtpConfig, name string) (*FtpProfile, *model.ExportError) {
	profile, ok := ftp.Profiles[name]
	if !ok {
		return nil, model.NewError(model.CodeProfileNotFound, "FTP profile not found", name)
	}
	if !profile.Enabled {
		return nil, model.NewError(model.CodeProfileDisabled, "FTP profile is disabled", name)
	}
	return &profile, nil
}
