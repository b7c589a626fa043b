package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/claude/forge/internal/config"
	forgemcp "github.com/claude/forge/internal/mcp"
	forgehttp "github.com/claude/forge/internal/server"
	"github.com/claude/forge/internal/storage"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and /metrics on localhost",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, *configPath, os.Stdout, true)
			if err != nil {
				return err
			}
			defer a.Close()
			a.log.Info("forge starting", "version", Version)

			srv := forgehttp.New(a.db, a.workout, a.engine, a.metrics, a.registry, a.cfg.Auth.APIKey, a.log)

			addr := a.cfg.Server.Addr()
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			a.log.Info("server starting", "addr", addr, "auth", a.cfg.Auth.APIKey != "")

			httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}
			errCh := make(chan error, 1)
			go func() {
				if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			a.log.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				a.log.Error("shutdown error", "error", err)
			}
			a.log.Info("server stopped")
			return nil
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := storage.RunMigrations(storage.Dialect(cfg.Database.Driver), cfg.Database.DSN()); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	}
}

// mcpCmd serves MCP over stdio. Stdout carries the protocol, so logs go to stderr.
func mcpCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath, os.Stderr, true)
			if err != nil {
				return err
			}
			defer a.Close()

			s := forgemcp.New(a.db, a.workout, a.engine, Version, a.log)
			a.log.Info("mcp server starting", "transport", "stdio")
			return server.ServeStdio(s)
		},
	}
}
