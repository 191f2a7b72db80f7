package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/asset-maintenance/internal/config"
	"github.com/iliyamo/asset-maintenance/internal/database"
	"github.com/iliyamo/asset-maintenance/internal/queue"
	"github.com/iliyamo/asset-maintenance/internal/router"
	"github.com/iliyamo/asset-maintenance/internal/schedule"
	"github.com/iliyamo/asset-maintenance/internal/service"
)

func newRootCommand() *cobra.Command {
	serve := newServeCommand()
	root := &cobra.Command{
		Use:           "asset-maintenance",
		Short:         "Asset maintenance scheduling API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newMigrateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var logDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			setupLogging(cfg)

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.AutoMigrate {
				if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
					return err
				}
			}

			var opts []schedule.Option
			if cfg.EventsEnabled {
				opts = append(opts, schedule.WithNotifier(service.NewCompletionPublisher(cfg.RabbitMQURL)))
				go func() {
					err := queue.StartCompletionConsumer(ctx, cfg.RabbitMQURL, logDir)
					if err != nil && !errors.Is(err, context.Canceled) {
						logrus.WithError(err).Error("completion consumer stopped")
					}
				}()
			}

			rdb := config.NewRedisClient()
			if rdb != nil {
				defer rdb.Close()
			}

			e := router.New(router.Deps{
				Cfg:       cfg,
				RateLimit: config.LoadRateLimitConfig(),
				DB:        db,
				Redis:     rdb,
				Options:   opts,
			})

			addr := ":" + cfg.Port
			errCh := make(chan error, 1)
			go func() {
				logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "db": cfg.DBDriver}).Info("listening")
				errCh <- e.Start(addr)
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logrus.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&logDir, "log-dir", "logs", "directory for the maintenance audit log")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			setupLogging(cfg)

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db, cfg.DBDriver); err != nil {
				return err
			}
			logrus.WithField("db", cfg.DBDriver).Info("schema up to date")
			return nil
		},
	}
}

func setupLogging(cfg config.Config) {
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}
	if cfg.Env == "prod" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func openDB(cfg config.Config) (*sql.DB, error) {
	if cfg.DBDriver == database.DriverSQLite {
		return database.OpenSQLite(cfg.SQLitePath)
	}
	return database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}
