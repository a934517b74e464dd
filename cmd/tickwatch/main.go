package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	dbPath  string
)

func main() {
	root := &cobra.Command{
		Use:   "tickwatch",
		Short: "Market-data distribution and price-alert engine",
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (YAML or JSON)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (overrides config)")

	root.AddCommand(
		newServeCmd(),
		newAlertsCmd(),
		newNotificationsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
