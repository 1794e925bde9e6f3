package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/ironcoach/internal/archive"
	"github.com/claude/ironcoach/internal/config"
	ironmcp "github.com/claude/ironcoach/internal/mcp"
	"github.com/claude/ironcoach/internal/repo"
	"github.com/claude/ironcoach/internal/server"
	"github.com/claude/ironcoach/internal/session"
	"github.com/claude/ironcoach/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	memoryStore := flag.Bool("memory", false, "use an in-memory store instead of PostgreSQL (dev only)")
	mcpStdio := flag.Bool("mcp-stdio", false, "serve MCP over stdio instead of mounting it at /mcp")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("IronCoach starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Store: PostgreSQL by default, in-memory for local development
	var store repo.Store
	if *memoryStore {
		store = repo.NewMemory()
		log.Info("using in-memory store", "mode", "dev")
	} else {
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")
		store = db
	}

	// Session archive (optional)
	var arch *archive.Archive
	if cfg.Archive.Dir != "" {
		arch, err = archive.Open(cfg.Archive.Dir)
		if err != nil {
			log.Error("failed to open session archive", "dir", cfg.Archive.Dir, "error", err)
			os.Exit(1)
		}
		defer arch.Close()
		log.Info("session archive open", "dir", cfg.Archive.Dir)
	}

	// Coordinator and surfaces
	coord := session.NewCoordinator(store, arch, log)
	coord.Subscribe(func(snap session.Snapshot) {
		if snap.IsWorkoutComplete {
			log.Info("session finished",
				"session", snap.SessionID,
				"member", snap.MemberID,
				"status", snap.Status,
				"logged_sets", snap.LoggedSetCount,
			)
		}
	})

	srv := server.New(coord, store, arch, cfg.Auth.APIKey, log)
	mcpSrv := ironmcp.New(coord, store, arch, Version, log)

	if *mcpStdio {
		log.Info("serving MCP over stdio")
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			log.Error("mcp server error", "error", err)
			os.Exit(1)
		}
		return
	}
	srv.Mount("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
