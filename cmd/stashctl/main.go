package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stashlog/stashlog/internal/config"
	"github.com/stashlog/stashlog/internal/store"
	"github.com/stashlog/stashlog/webservice"
)

var rootCmd = &cobra.Command{
	Use:   "stashctl",
	Short: "Admin tool for the stashlog database",
	Long: `stashctl manages stashlog out of band: user accounts and database
migrations. It connects to the same database the server uses, configured
through the STASHLOG_* environment variables.`,
}

func openStore() (store.Store, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	return webservice.NewStore(cfg)
}

func main() {
	rootCmd.AddCommand(usersCmd, dbCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
