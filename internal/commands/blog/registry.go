package blogcmd

import (
	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers built by RegisterBlogCommands.
type HandlerSet struct {
	Refresh *RefreshCatalogHandler
	Build   *BuildSiteHandler
}

// Services lists what the handlers operate on. Generator may be nil when
// only the catalog commands are needed.
type Services struct {
	Posts     interfaces.PostIndex
	Generator generator.Service
	// Report receives build results.
	Report func(*generator.BuildResult)
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	refreshOpts []commands.HandlerOption[RefreshCatalogCommand]
	buildOpts   []commands.HandlerOption[BuildSiteCommand]
}

// WithRefreshHandlerOptions forwards options to the refresh handler.
func WithRefreshHandlerOptions(opts ...commands.HandlerOption[RefreshCatalogCommand]) Option {
	return func(cfg *options) {
		cfg.refreshOpts = append(cfg.refreshOpts, opts...)
	}
}

// WithBuildHandlerOptions forwards options to the build handler.
func WithBuildHandlerOptions(opts ...commands.HandlerOption[BuildSiteCommand]) Option {
	return func(cfg *options) {
		cfg.buildOpts = append(cfg.buildOpts, opts...)
	}
}

// RegisterBlogCommands builds the handlers and registers them with reg when
// it is not nil.
func RegisterBlogCommands(reg CommandRegistry, services Services, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if services.Posts == nil {
		return nil, errCatalogRequired
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	set := &HandlerSet{
		Refresh: NewRefreshCatalogHandler(services.Posts, commands.MessageLogger(provider, RefreshCatalogCommand{}), cfg.refreshOpts...),
	}
	if services.Generator != nil {
		logger := commands.MessageLogger(provider, BuildSiteCommand{})
		set.Build = NewBuildSiteHandler(services.Generator, logger, services.Report, cfg.buildOpts...)
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Refresh); err != nil {
			return nil, err
		}
		if set.Build != nil {
			if err := reg.RegisterCommand(set.Build); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// Subscription detaches handlers from the global dispatcher.
type Subscription interface {
	Unsubscribe()
}

// Subscribe attaches the handlers in set to the go-command dispatcher so
// callers can dispatch messages by type. Refreshes are retried once.
func Subscribe(set *HandlerSet) []Subscription {
	if set == nil {
		return nil
	}
	var subs []Subscription
	if set.Refresh != nil {
		subs = append(subs, dispatcher.SubscribeCommand(set.Refresh, runner.WithMaxRetries(1)))
	}
	if set.Build != nil {
		subs = append(subs, dispatcher.SubscribeCommand(set.Build))
	}
	return subs
}
