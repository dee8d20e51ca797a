package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/dietdesk/internal/config"
	"github.com/dukerupert/dietdesk/internal/database"
	"github.com/dukerupert/dietdesk/internal/logging"
	"github.com/dukerupert/dietdesk/internal/server"
)

const (
	Version = "0.1.0"
	appName = "dietdesk"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Hospital diet management console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(
		serveCmd(&configPath),
		exportCmd(&configPath),
		backupCmd(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

// app is the state every subcommand needs. Close releases the database.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	logger *slog.Logger
	srv    *server.Server
}

func openApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &app{
		cfg:    cfg,
		db:     db,
		logger: logger,
		srv:    server.New(cfg, db, logger),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
