package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/moodcheck/survey-bot/internal/api"
	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/conf"
	"github.com/moodcheck/survey-bot/internal/pkg/logger"
	"github.com/moodcheck/survey-bot/internal/service"
)

func newBroadcastCmd() *cobra.Command {
	var serverURL string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "broadcast KIND",
		Short: "Ask the running server to send a survey (morning, day or evening) to every active chat now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger.SetupTo(os.Stderr, "survey-bot", cfg.Debug)

			if serverURL == "" {
				serverURL = api.BaseURL(cfg.HTTPAddr)
			}
			report, err := api.NewClient(serverURL, cfg.TriggerSecret, timeout).Trigger(cmd.Context(), kind)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "base URL of the running bot (default derived from HTTP_ADDR)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for the broadcast report")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "stats CHAT_ID",
		Short: "Show entry counts and today's averages of a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.ucs.Stats.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(stats)
			}
			_, _ = fmt.Fprintln(os.Stdout, service.FormatStats(a.catalog, stats))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate a survey catalog and print its questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := conf.LoadCatalog(path)
			if err != nil {
				return err
			}
			for _, kind := range domain.Kinds {
				fmt.Printf("%s: %s\n", kind, catalog.Title(kind))
				for i, q := range catalog.QuestionsFor(kind) {
					fmt.Printf("  %2d. %-18s %-14s %s\n", i+1, q.Key, q.Type, q.Prompt)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "catalog YAML (built-in catalog when empty)")
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
