// Package main provides the entry point for the stateless multi-tenant MCP
// server. It wires together all components using dependency injection and
// manages the server lifecycle with graceful shutdown.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voyagio/mcp-tenant-server/internal/config"
	"github.com/voyagio/mcp-tenant-server/internal/credentials"
	"github.com/voyagio/mcp-tenant-server/internal/jwtauth"
	"github.com/voyagio/mcp-tenant-server/internal/mcp"
	"github.com/voyagio/mcp-tenant-server/internal/prompts"
	"github.com/voyagio/mcp-tenant-server/internal/resources"
	"github.com/voyagio/mcp-tenant-server/internal/store"
	"github.com/voyagio/mcp-tenant-server/internal/tools"
	"github.com/voyagio/mcp-tenant-server/internal/transport"
)

const serverName = "mcp-tenant-server"

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("server configuration loaded",
		"addr", cfg.Addr,
		"idp_region", cfg.IdPRegion,
		"idp_user_pool_id", cfg.IdPUserPoolID,
		"table", cfg.TableName,
		"bucket", cfg.BucketName,
	)

	// Wire the JWT verifier
	verifier := jwtauth.New(jwtauth.Config{
		Region:        cfg.IdPRegion,
		UserPoolID:    cfg.IdPUserPoolID,
		ClientID:      cfg.IdPClientID,
		JWKSCacheTTL:  cfg.JWKSCacheTTL,
		JWKSCacheSize: cfg.JWKSCacheSize,
		ClockSkew:     cfg.ClockSkew,
	})
	if cfg.IdPUserPoolID == "" {
		slog.Warn("IDP_USER_POOL_ID is not set; running in local-dev mode, no token will ever verify")
	}

	// Assemble the candidate catalog. Every request filters it down to the
	// caller's visibility; the catalog itself is immutable after this point.
	catalog, err := buildCatalog(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to build catalog: %v", err)
	}

	info := mcp.ServerInfo{Name: serverName, Version: version}

	server, _, err := transport.NewTransportServices(&transport.Config{
		ServerConfig: cfg,
		Verifier:     verifier,
		Catalog:      catalog,
		ServerInfo:   info,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("failed to create transport services: %v", err)
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr, "version", version)
		errCh <- server.Start()
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// buildCatalog assembles the full candidate tool/resource/prompt set. The
// whoami tool and the prompt catalog are always present; the AWS-backed
// domain tools and the tenant policy resource are wired only when their
// configuration is complete, so a local-dev process without AWS credentials
// still serves the public surface.
func buildCatalog(ctx context.Context, cfg *config.Config) (mcp.Catalog, error) {
	catalog := mcp.Catalog{
		Tools:   []mcp.ToolDescriptor{tools.WhoamiDescriptor()},
		Prompts: prompts.Catalog(),
	}

	catalog.Tools = append(catalog.Tools, tools.FindFlightsDescriptor())

	if cfg.RoleARN != "" && cfg.TableName != "" {
		vendor, err := credentials.New(ctx, cfg.AWSRegion, cfg.RoleARN, cfg.CredentialTTL)
		if err != nil {
			return mcp.Catalog{}, err
		}
		st, err := store.New(ctx, cfg.AWSRegion, cfg.TableName)
		if err != nil {
			return mcp.Catalog{}, err
		}
		catalog.Tools = append(catalog.Tools,
			tools.ListBookingsDescriptor(st, vendor),
			tools.GetLoyaltyBalanceDescriptor(st),
		)
	} else {
		slog.Warn("ROLE_ARN or TABLE_NAME not set; tenant store tools disabled")
	}

	if cfg.BucketName != "" {
		policyStore, err := resources.NewPolicyStore(ctx, cfg.AWSRegion, cfg.BucketName)
		if err != nil {
			return mcp.Catalog{}, err
		}
		catalog.Resources = append(catalog.Resources, resources.TravelPolicyDescriptor(policyStore))
	} else {
		slog.Warn("BUCKET_NAME not set; tenant policy resource disabled")
	}

	return catalog, nil
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
