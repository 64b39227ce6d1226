package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-command/dispatcher"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/cmd/blog/internal/bootstrap"
)

const shutdownTimeout = 10 * time.Second

var moduleBuilder = bootstrap.BuildModule

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := runServe(ctx, os.Args[1:]); err != nil {
		log.Fatalf("blog serve: %v", err)
	}
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("blog-serve", flag.ContinueOnError)
	opts := bootstrap.RegisterFlags(fs)
	addr := fs.String("addr", "", "Listen address (defaults to BLOG_ADDR or :8080)")
	refresh := fs.Duration("refresh-interval", 0, "Rebuild the cached catalog on this interval (0 disables)")
	release := fs.Bool("release", true, "Run gin in release mode")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *release {
		gin.SetMode(gin.ReleaseMode)
	}

	module, err := moduleBuilder(*opts, func(cfg *blog.Config) {
		if trimmed := strings.TrimSpace(*addr); trimmed != "" {
			cfg.Server.Addr = trimmed
		}
	})
	if err != nil {
		return err
	}

	router, err := module.Router()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              module.Config().Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if *refresh > 0 {
		subs := module.Subscribe()
		defer func() {
			for _, sub := range subs {
				sub.Unsubscribe()
			}
		}()
		go refreshLoop(ctx, *refresh)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("serving blog api on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := dispatcher.Dispatch(ctx, blog.RefreshCatalogCommand{Reason: "interval"}); err != nil {
				log.Printf("refresh catalog: %v", err)
			}
		}
	}
}
