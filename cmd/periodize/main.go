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

	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/meltforce/periodize/internal/config"
	"github.com/meltforce/periodize/internal/mcp"
	"github.com/meltforce/periodize/internal/schedule"
	"github.com/meltforce/periodize/internal/server"
	"github.com/meltforce/periodize/internal/session"
	"github.com/meltforce/periodize/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Periodize starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
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

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Services
	scheduleSvc := schedule.New(db, db, db, log)
	sessionSvc := session.New(db, db, db, scheduleSvc, log)

	// Identity and listener — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server
	var whois server.WhoIsClient
	identity := server.DevIdentity

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

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		whois = lc
		identity = server.TailscaleIdentity(lc, db, log)

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

	// Create server
	srv := server.New(db, scheduleSvc, sessionSvc, cfg.Auth.APIKey, identity, log)

	// MCP over streamable HTTP, sharing the same listener
	mcpSrv := mcp.New(db, scheduleSvc, sessionSvc, Version, log)
	srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(mcpIdentity(whois, db, log)),
	))

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

// mcpIdentity resolves the MCP caller to a user id. Without tsnet the fixed
// dev user is used, matching the HTTP identity middleware.
func mcpIdentity(whois server.WhoIsClient, db *storage.DB, log *slog.Logger) mcpserver.HTTPContextFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		if whois == nil {
			return mcp.WithUserID(ctx, 1)
		}
		who, err := whois.WhoIs(r.Context(), r.RemoteAddr)
		if err != nil || who == nil || who.UserProfile == nil {
			log.Warn("mcp whois failed", "remote", r.RemoteAddr, "error", err)
			return ctx
		}
		u, err := db.EnsureUser(r.Context(), who.UserProfile.LoginName, who.UserProfile.DisplayName)
		if err != nil {
			log.Error("mcp user resolution failed", "login", who.UserProfile.LoginName, "error", err)
			return ctx
		}
		return mcp.WithUserID(ctx, u.ID)
	}
}
