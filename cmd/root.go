package cmd

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-reservation/config"
	"github.com/yeremiapane/table-reservation/database"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "resrv",
		Short:         "Restaurant table reservations: booking form, read-only API and live board",
		SilenceUsage:  true,
		SilenceErrors: true,
		// no subcommand runs the web server
		RunE: serve.RunE,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(serve)
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newTablesCmd())
	root.AddCommand(newBookCmd())
	root.AddCommand(newConsumeCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config, configures logging and opens a migrated database.
func bootstrap() (config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := utils.ConfigureLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return config.Config{}, nil, err
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Setup(db); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}
