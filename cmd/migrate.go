package cmd

import (
	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-reservation/utils"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and seed tables, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			utils.InfoLogger.Println("Migration completed.")
			return nil
		},
	}
}
