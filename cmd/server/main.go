package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgallion1/blockbook/internal/api"
	"github.com/dgallion1/blockbook/internal/blocktype"
	"github.com/dgallion1/blockbook/internal/config"
	"github.com/dgallion1/blockbook/internal/settings"
	"github.com/dgallion1/blockbook/internal/stylebook"
	"github.com/dgallion1/blockbook/internal/templates"
	"github.com/dgallion1/blockbook/internal/wpclient"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Block types: bundled core types, then the theme's own.
	types, err := blocktype.Core()
	if err != nil {
		log.Error("load core block types", "error", err)
		os.Exit(1)
	}

	// Template sources, highest priority first: stored customisations,
	// theme files, the remote site.
	chain := templates.NewChain(log)
	theme := "default"
	if cfg.ThemeDir != "" {
		theme = filepath.Base(cfg.ThemeDir)
	}

	var remoteStats *wpclient.Stats
	var store *templates.SQLStore
	if cfg.DatabasePath != "" {
		store, err = templates.OpenSQLStore(cfg.DatabasePath, theme)
		if err != nil {
			log.Error("open template store", "path", cfg.DatabasePath, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		chain.Add(store)
	}

	if cfg.ThemeDir != "" {
		if !templates.IsBlockTheme(cfg.ThemeDir) {
			log.Warn("theme has no templates/index.html", "theme_dir", cfg.ThemeDir)
		}
		chain.Add(templates.NewThemeDir(cfg.ThemeDir))

		blocksDir := filepath.Join(cfg.ThemeDir, "blocks")
		if info, err := os.Stat(blocksDir); err == nil && info.IsDir() {
			if err := blocktype.LoadDir(types, blocksDir); err != nil {
				log.Error("load theme block types", "dir", blocksDir, "error", err)
				os.Exit(1)
			}
		}
	}

	if cfg.WPURL != "" {
		wp := wpclient.NewClient(cfg.WPURL, cfg.WPUser, cfg.WPAppPassword)
		defer wp.Close()
		chain.Add(wp)
		remoteStats = wp.Stats

		fetchCtx, fetchCancel := context.WithTimeout(ctx, 30*time.Second)
		added, err := wp.RegisterBlockTypes(fetchCtx, types)
		fetchCancel()
		if err != nil {
			log.Warn("fetch remote block types", "url", cfg.WPURL, "error", err)
		} else {
			log.Info("registered remote block types", "count", added)
		}
	}

	for _, name := range cfg.HiddenBlockTypes {
		if !types.Unregister(name) {
			log.Warn("hidden block type not registered", "block", name)
		}
	}

	// Editor settings pipeline.
	resolver := &settings.Resolver{Templates: chain, IsBlockTheme: cfg.BlockTheme, Log: log}
	pipe := settings.NewPipeline(resolver.Step())
	if cfg.ThemeDir != "" {
		if css, err := os.ReadFile(filepath.Join(cfg.ThemeDir, "style.css")); err == nil {
			pipe.Use(settings.Set("theme-styles", "styles", []any{map[string]any{"css": string(css)}}))
		}
	}

	sessions := stylebook.NewSessions(cfg.MaxSessions, cfg.SessionTTL)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.Cleanup()
			}
		}
	}()

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Settings:   pipe,
		BlockTypes: types,
		Templates:  chain,
		Store:      store,
		Sessions:   sessions,

		RemoteStats: remoteStats,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting blockbook", "port", cfg.Port, "theme", theme, "block_theme", cfg.BlockTheme, "template_sources", chain.Len())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
