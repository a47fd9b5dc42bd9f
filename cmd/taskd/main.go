// Command taskd serves the task tracker HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sobebarali/mini-task-tracker/api"
	"github.com/sobebarali/mini-task-tracker/auth"
	"github.com/sobebarali/mini-task-tracker/cache/redis"
	"github.com/sobebarali/mini-task-tracker/config"
	"github.com/sobebarali/mini-task-tracker/db/sql/postgres"
	"github.com/sobebarali/mini-task-tracker/httpx"
	"github.com/sobebarali/mini-task-tracker/task"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "taskd",
		Short:         "Multi-tenant task tracker API with a Redis-backed listing cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a config file (optional, env vars win)")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := postgres.Open(postgres.WithDSN(cfg.PostgresDSN))
	if err != nil {
		return err
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = postgres.ApplyMigrations(migrateCtx, db, postgres.Schema...)
	cancel()
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenManager(auth.TokenManagerConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.JWTTTL,
	})
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(auth.ServiceConfig{
		Repository: postgres.NewUserRepository(db),
		Hasher:     auth.NewBcryptHasher(auth.WithBcryptCost(cfg.BcryptCost)),
		Tokens:     tokens,
	})
	if err != nil {
		return err
	}

	store := redis.NewStore(redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	defer store.Close()

	taskSvc, err := task.NewService(task.ServiceConfig{
		Repository: postgres.NewTaskRepository(db),
		Cache: task.NewListCache(store,
			task.WithTTL(cfg.CacheTTL),
			task.WithLogger(logger),
		),
	})
	if err != nil {
		return err
	}

	srv := httpx.NewServer(
		httpx.WithAddress(cfg.HTTPAddress),
		httpx.WithTimeouts(cfg.HTTPReadTimeout, cfg.HTTPWriteTimeout),
		httpx.WithCORS(nil),
	)
	handler := &api.Handler{Auth: authSvc, Tasks: taskSvc, Tokens: tokens}
	srv.RegisterRoutes(handler.Register)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("taskd listening", "address", cfg.HTTPAddress)
	if err := srv.Start(ctx, httpx.WithShutdownTimeout(10*time.Second)); err != nil && err != context.Canceled {
		return err
	}
	logger.Info("taskd stopped")
	return nil
}
