package main

import (
	"fmt"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"todo-app/internal/auth"
	"todo-app/internal/config"
	"todo-app/internal/logging"
	"todo-app/internal/model"
	"todo-app/internal/repository"
	"todo-app/internal/service"
)

var Version = "dev"

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "todoapp",
		Short:         "Multi-tenant TODO service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs.
type app struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB
}

func openApp(skipMigrate bool) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	db, err := repository.NewDB(repository.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.URL,
		Logger: log,
		Clock:  clock.New(),

		SkipMigrate: skipMigrate,
	})
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) Close() error {
	_ = a.log.Sync()
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// seedCategories maps configured names onto the built-in palette.
func seedCategories(names []string) []model.Category {
	colors := make(map[string]string, len(service.DefaultCategories))
	for _, c := range service.DefaultCategories {
		colors[c.Name] = c.Color
	}
	out := make([]model.Category, 0, len(names))
	for _, name := range names {
		out = append(out, model.Category{Name: name, Color: colors[name]})
	}
	return out
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := repository.Migrate(a.db); err != nil {
				return err
			}
			a.log.Info("Schema is up to date", zap.String("driver", a.cfg.Database.Driver))
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the configured default categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()
			svc := service.NewCategoryService(repository.NewCategoryRepository(a.db), a.log)
			return svc.EnsureDefaults(cmd.Context(), seedCategories(a.cfg.Seed.Categories))
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		subject  string
		username string
		email    string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a development bearer token signed with auth.hmac_secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if cfg.Auth.HMACSecret == "" {
				return fmt.Errorf("auth.hmac_secret is not set")
			}
			tok, err := auth.SignHS256(cfg.Auth.HMACSecret, auth.Claims{
				Subject:  subject,
				Username: username,
				Email:    email,
			}, cfg.Auth.Issuer, time.Now(), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (external user id)")
	cmd.Flags().StringVar(&username, "username", "", "preferred_username claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
