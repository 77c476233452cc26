// Command survey-mcp serves survey statistics to MCP clients over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/moodcheck/survey-bot/internal/biz"
	"github.com/moodcheck/survey-bot/internal/conf"
	"github.com/moodcheck/survey-bot/internal/data"
	"github.com/moodcheck/survey-bot/internal/mcp"
	"github.com/moodcheck/survey-bot/internal/pkg/logger"
)

const version = "v1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "survey-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()
	cfg, err := conf.LoadFromEnv()
	if err != nil {
		return err
	}
	if err := cfg.ValidateCore(); err != nil {
		return err
	}

	// stdout belongs to the MCP protocol
	log := logger.SetupTo(os.Stderr, "survey-mcp", cfg.Debug)

	catalog, err := conf.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	loc, _ := cfg.Location()

	// The mirror is write-only, the MCP tools never need it
	repos, d, err := data.NewRepositories(ctx, data.Options{DBPath: cfg.DBPath})
	if err != nil {
		return err
	}
	defer d.Close()

	ucs := biz.NewUsecases(catalog, *repos, cfg.ToMirrorConfig(), loc)
	log.Info().Str("db", cfg.DBPath).Msg("serving MCP over stdio")
	return mcp.NewServer(ucs.Stats, catalog, version).Run(ctx)
}
