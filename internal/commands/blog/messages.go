package blogcmd

import (
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	refreshCatalogMessageType = "blog.catalog.refresh"
	buildSiteMessageType      = "blog.site.build"
)

// RefreshCatalogCommand drops any cached catalog and lists the content tree
// again.
type RefreshCatalogCommand struct {
	// Reason is logged with the refresh, e.g. "fs-watch" or "manual".
	Reason string `json:"reason,omitempty"`
}

// Type implements command.Message.
func (RefreshCatalogCommand) Type() string { return refreshCatalogMessageType }

// Validate implements command.Message. Every refresh is valid.
func (RefreshCatalogCommand) Validate() error { return nil }

// BuildSiteCommand runs the static export. Empty fields keep the configured
// values.
type BuildSiteCommand struct {
	OutputDir string `json:"output_dir,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
	DryRun    bool   `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate rejects blank overrides and relative base urls.
func (cmd BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OutputDir, validation.By(func(value any) error {
			dir := value.(string)
			if dir != "" && strings.TrimSpace(dir) == "" {
				return validation.NewError("blog.site.build.output_dir_blank", "output directory cannot be blank")
			}
			return nil
		})),
		validation.Field(&cmd.BaseURL, validation.By(func(value any) error {
			raw := strings.TrimSpace(value.(string))
			if raw == "" {
				return nil
			}
			parsed, err := url.Parse(raw)
			if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
				return validation.NewError("blog.site.build.base_url_invalid", "base url must be an absolute http(s) url")
			}
			return nil
		})),
	)
}
