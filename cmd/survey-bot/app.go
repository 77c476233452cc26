package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/moodcheck/survey-bot/internal/biz"
	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
	"github.com/moodcheck/survey-bot/internal/conf"
	"github.com/moodcheck/survey-bot/internal/data"
	"github.com/moodcheck/survey-bot/internal/infra/feishu"
	"github.com/moodcheck/survey-bot/internal/infra/telegram"
	"github.com/moodcheck/survey-bot/internal/pkg/logger"
	"github.com/moodcheck/survey-bot/internal/service"
)

// app is the wired object graph shared by the subcommands
type app struct {
	cfg     *conf.Config
	catalog *domain.Catalog
	loc     *time.Location
	times   map[domain.SurveyKind]time.Duration
	data    *data.Data
	ucs     *biz.Usecases
	log     zerolog.Logger

	// set by withTransport
	messages repo.MessageRepo
	telegram *telegram.Client
	feishu   *feishu.Client
}

func loadConfig() (*conf.Config, error) {
	// A missing .env is normal in production
	_ = godotenv.Load(envFileFlag)
	return conf.LoadFromEnv()
}

// newApp loads configuration, the catalog and storage. Transport settings are
// checked only when withTransport is true. Logs go to logOut.
func newApp(ctx context.Context, withTransport bool, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if withTransport {
		err = cfg.Validate()
	} else {
		err = cfg.ValidateCore()
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := logger.SetupTo(logOut, "survey-bot", cfg.Debug)

	catalog, err := conf.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	loc, _ := cfg.Location()
	times, err := cfg.BroadcastTimes()
	if err != nil {
		return nil, err
	}

	repos, d, err := data.NewRepositories(ctx, data.Options{
		DBPath: cfg.DBPath,
		Sheets: data.SheetsConfig{
			SpreadsheetID:   cfg.SheetsSpreadsheetID,
			CredentialsFile: cfg.SheetsCredentialsFile,
			Range:           cfg.SheetsRange,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	log.Info().Str("db", cfg.DBPath).Bool("mirror", repos.Mirror != nil).Msg("storage ready")

	a := &app{
		cfg:     cfg,
		catalog: catalog,
		loc:     loc,
		times:   times,
		data:    d,
		ucs:     biz.NewUsecases(catalog, *repos, cfg.ToMirrorConfig(), loc),
		log:     log,
	}

	if withTransport {
		switch cfg.Transport {
		case conf.TransportTelegram:
			a.telegram = telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramToken)
			a.messages = data.NewTelegramRepo(a.telegram)
		case conf.TransportFeishu:
			a.feishu = feishu.NewClient(cfg.FeishuAppID, cfg.FeishuAppSecret)
			a.messages = data.NewFeishuRepo(a.feishu)
		}
	}
	return a, nil
}

func (a *app) surveyService() *service.SurveyService {
	return service.NewSurveyService(a.ucs, a.messages, service.Greeting(a.catalog, a.times, a.loc))
}

func (a *app) scheduler(svc *service.SurveyService) *service.BroadcastScheduler {
	return service.NewBroadcastScheduler(a.ucs.Roster, svc, service.BroadcastConfig{
		Times:    a.times,
		Location: a.loc,
		Workers:  a.cfg.BroadcastWorkers,
	})
}

func (a *app) Close() {
	if err := a.data.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close database")
	}
}
