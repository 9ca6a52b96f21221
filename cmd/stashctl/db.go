package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stashlog/stashlog/internal/config"
	"github.com/stashlog/stashlog/internal/store/postgres"
	"github.com/stashlog/stashlog/internal/store/sqlite"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		switch cfg.DBDriver {
		case "postgres":
			db, err := postgres.Open(cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			if err := postgres.Migrate(db); err != nil {
				return err
			}
		case "sqlite":
			// Opening the sqlite store creates any missing tables.
			st, err := sqlite.New(cfg.SQLitePath)
			if err != nil {
				return err
			}
			_ = st.Close()
		default:
			return fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
		}
		fmt.Println("database is up to date")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
}
