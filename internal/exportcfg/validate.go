package exportcfg

import (
	"fmt"
	"sort"

	"github.com/scriptor-pro/ernest-export/internal/model"
)

// Validate returns every validation failure in the config. A non-empty result
// rejects the config; it runs once per job, before any runner is constructed.
func Validate(cfg *Config) []*model.ExportError {
	var failures []*model.ExportError

	if cfg.Version != SupportedVersion {
		failures = append(failures, model.NewError(
			model.CodeUnsupportedConfigVersion,
			"Unsupported config version",
			fmt.Sprintf("version %d, supported version is %d", cfg.Version, SupportedVersion),
		))
	}

	if cfg.Netlify != nil && cfg.Netlify.Enabled && cfg.Netlify.SiteID == nil {
		failures = append(failures, model.NewError(
			model.CodeInvalidNetlifyConfig,
			"Netlify is enabled but site_id is missing",
			"",
		))
	}

	if cfg.Vercel != nil && cfg.Vercel.Enabled {
		if cfg.Vercel.ProjectName == nil {
			failures = append(failures, model.NewError(
				model.CodeInvalidVercelConfig,
				"Vercel is enabled but project_name is missing",
				"",
			))
		}
		if cfg.Vercel.DeployHookURL == nil {
			failures = append(failures, model.NewError(
				model.CodeInvalidVercelConfig,
				"Vercel is enabled but deploy_hook_url is missing",
				"",
			))
		}
	}

	if cfg.Ftp != nil {
		// Deterministic order for stable error reporting.
		names := make([]string, 0, len(cfg.Ftp.Profiles))
		for name := range cfg.Ftp.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			profile := cfg.Ftp.Profiles[name]
			if profile.Enabled && profile.Host == nil && cfg.Ftp.Host == nil {
				failures = append(failures, model.NewError(
					model.CodeInvalidFtpProfile,
					fmt.Sprintf("FTP profile %q is enabled but host is missing", name),
					name,
				))
			}
		}
	}

	return failures
}
