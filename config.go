package blog

import "github.com/goliatone/go-blog/internal/runtimeconfig"

var (
	ErrContentDirRequired         = runtimeconfig.ErrContentDirRequired
	ErrExtensionsRequired         = runtimeconfig.ErrExtensionsRequired
	ErrExtensionInvalid           = runtimeconfig.ErrExtensionInvalid
	ErrParseFailurePolicyInvalid  = runtimeconfig.ErrParseFailurePolicyInvalid
	ErrCollisionPolicyInvalid     = runtimeconfig.ErrCollisionPolicyInvalid
	ErrRevalidateRequiresCache    = runtimeconfig.ErrRevalidateRequiresCache
	ErrBaseURLInvalid             = runtimeconfig.ErrBaseURLInvalid
	ErrFeedLimitInvalid           = runtimeconfig.ErrFeedLimitInvalid
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	IndexConfig     = runtimeconfig.IndexConfig
	CacheConfig     = runtimeconfig.CacheConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
	SiteConfig      = runtimeconfig.SiteConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	ServerConfig    = runtimeconfig.ServerConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ApplyEnv overlays BLOG_* environment variables onto cfg. A nil lookup
// reads the process environment.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	return runtimeconfig.ApplyEnv(cfg, lookup)
}
