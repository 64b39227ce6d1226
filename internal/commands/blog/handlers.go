package blogcmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	refreshOperation = "catalog.refresh"
	buildOperation   = "site.build"
)

var (
	errCatalogRequired   = errors.New("blog command: post index is required")
	errGeneratorRequired = errors.New("blog command: generator is required")
)

var (
	_ command.Commander[RefreshCatalogCommand] = (*RefreshCatalogHandler)(nil)
	_ command.Commander[BuildSiteCommand]      = (*BuildSiteHandler)(nil)
)

// Invalidator is implemented by catalogs that hold a cached listing.
type Invalidator interface {
	Invalidate()
}

// RefreshCatalogHandler invalidates a cached catalog and rebuilds it.
type RefreshCatalogHandler struct {
	inner *commands.Handler[RefreshCatalogCommand]
}

// NewRefreshCatalogHandler binds the handler to index. When index also
// implements Invalidator it is invalidated before the listing.
func NewRefreshCatalogHandler(index interfaces.PostIndex, logger interfaces.Logger, opts ...commands.HandlerOption[RefreshCatalogCommand]) *RefreshCatalogHandler {
	baseLogger := logging.Or(logger)

	exec := func(ctx context.Context, msg RefreshCatalogCommand) error {
		if index == nil {
			return errCatalogRequired
		}
		if inv, ok := index.(Invalidator); ok {
			inv.Invalidate()
		}
		catalog, err := index.List(ctx)
		if err != nil {
			return err
		}
		baseLogger.Info("blog.command.catalog_refresh.completed", "count", len(catalog))
		return nil
	}

	handlerOpts := []commands.HandlerOption[RefreshCatalogCommand]{
		commands.WithLogger[RefreshCatalogCommand](baseLogger),
		commands.WithOperation[RefreshCatalogCommand](refreshOperation),
		commands.WithFailure[RefreshCatalogCommand](commands.CodeCatalogRefreshFailed, "catalog refresh failed"),
		commands.WithMessageFields(func(msg RefreshCatalogCommand) map[string]any {
			if msg.Reason == "" {
				return nil
			}
			return map[string]any{"reason": msg.Reason}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RefreshCatalogHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RefreshCatalogCommand].
func (h *RefreshCatalogHandler) Execute(ctx context.Context, msg RefreshCatalogCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildSiteHandler runs generator builds.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler binds the handler to service. report, when set,
// receives every result, including the partial result of a build that
// failed to render some posts.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, report func(*generator.BuildResult), opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logging.Or(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return errGeneratorRequired
		}
		result, err := service.Build(ctx, generator.BuildOptions{
			OutputDir: msg.OutputDir,
			BaseURL:   msg.BaseURL,
			DryRun:    msg.DryRun,
		})
		if result != nil {
			if report != nil {
				report(result)
			}
			logging.WithFields(baseLogger, map[string]any{
				"output_dir":   result.OutputDir,
				"posts_built":  result.PostsBuilt,
				"posts_failed": result.PostsFailed,
				"artifacts":    len(result.Artifacts),
				"dry_run":      result.DryRun,
			}).Info("blog.command.site_build.completed")
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand](buildOperation),
		commands.WithFailure[BuildSiteCommand](commands.CodeSiteBuildFailed, "site build failed"),
		// Builds walk and render the whole tree; the default timeout is too short for large blogs.
		commands.WithTimeout[BuildSiteCommand](0),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.OutputDir != "" {
				fields["output_dir"] = msg.OutputDir
			}
			if msg.BaseURL != "" {
				fields["base_url"] = msg.BaseURL
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
