package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

var (
	envFileFlag string
	rootCmd     = &cobra.Command{
		Use:   "survey-bot",
		Short: "Mood survey chat bot with scheduled broadcasts",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "dotenv file loaded before the environment")

	rootCmd.AddCommand(newServeCmd(), newBroadcastCmd(), newStatsCmd(), newCatalogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
