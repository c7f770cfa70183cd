package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todo-app/internal/api"
	"todo-app/internal/auth"
	"todo-app/internal/repository"
	"todo-app/internal/service"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.HTTP.Addr = addr
			}
			runErr := runServe(cmd.Context(), a)
			if err := a.Close(); err != nil {
				runErr = multierror.Append(runErr, fmt.Errorf("close: %w", err)).ErrorOrNil()
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

func runServe(parent context.Context, a *app) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		HMACSecret:      a.cfg.Auth.HMACSecret,
		RSAPublicKeyPEM: a.cfg.Auth.RSAPublicKeyPEM,
		Issuer:          a.cfg.Auth.Issuer,
		Audience:        a.cfg.Auth.Audience,
	})
	if err != nil {
		return fmt.Errorf("token verifier: %w", err)
	}

	userRepo := repository.NewUserRepository(a.db)
	taskRepo := repository.NewTaskRepository(a.db)
	tagRepo := repository.NewTagRepository(a.db)
	categoryRepo := repository.NewCategoryRepository(a.db)

	categorySvc := service.NewCategoryService(categoryRepo, a.log)
	if err := categorySvc.EnsureDefaults(ctx, seedCategories(a.cfg.Seed.Categories)); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	scheduler := service.NewSchedulerService(time.UTC, a.log)
	if err := scheduleDigest(scheduler, service.NewReminderService(taskRepo, userRepo, a.log), a); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := api.NewHandler(api.Config{
		Log:            a.log,
		Verifier:       verifier,
		Resolver:       auth.NewResolver(userRepo),
		Tasks:          service.NewTaskService(taskRepo, tagRepo),
		Tags:           service.NewTagService(tagRepo),
		Categories:     categorySvc,
		Profiles:       service.NewProfileService(userRepo),
		AllowedOrigins: a.cfg.CORS.AllowedOrigins,
		Registry:       registry,
		Health: func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.log.Info("Shutdown complete")
	return nil
}

func scheduleDigest(scheduler *service.SchedulerService, reminders *service.ReminderService, a *app) error {
	job := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := reminders.DigestAll(jobCtx, time.Now().UTC()); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn("Digest failed", zap.Error(err))
		}
	}

	switch {
	case a.cfg.Report.At != "":
		if _, err := scheduler.ScheduleDaily(a.cfg.Report.At, job); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
	case a.cfg.Report.Interval > 0:
		if _, err := scheduler.ScheduleInterval(a.cfg.Report.Interval, job); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
	}
	return nil
}
