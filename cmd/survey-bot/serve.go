package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/moodcheck/survey-bot/internal/api"
	"github.com/moodcheck/survey-bot/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot: chat transport, broadcast timers and the HTTP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := newApp(ctx, true, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := a.surveyService()
	scheduler := a.scheduler(svc)
	apiServer := api.NewServer(a.cfg.HTTPAddr, scheduler, a.ucs.Stats, a.cfg.TriggerSecret)

	var transport func(context.Context) error
	var stopTransport func()
	switch {
	case a.telegram != nil:
		tg := server.NewTelegramServer(a.telegram, svc, a.cfg.TelegramWebhookURL, a.cfg.TelegramWebhookSecret)
		if tg.Webhook() {
			apiServer.SetWebhook(tg)
		}
		transport = tg.Start
		stopTransport = func() {}
	case a.feishu != nil:
		fs := server.NewFeishuServer(a.feishu, svc)
		transport = fs.Start
		stopTransport = fs.Stop
	}

	errCh := make(chan error, 2)
	go func() {
		if err := apiServer.Start(); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := transport(ctx); err != nil {
			errCh <- err
		}
	}()

	scheduler.Start(ctx)
	a.log.Info().
		Str("transport", a.cfg.Transport).
		Str("timezone", a.loc.String()).
		Str("http", a.cfg.HTTPAddr).
		Msg("survey bot started")

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down")
	case err = <-errCh:
		a.log.Error().Err(err).Msg("server failed, shutting down")
	}

	scheduler.Stop()
	stopTransport()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if stopErr := apiServer.Stop(shutdownCtx); stopErr != nil && !errors.Is(stopErr, context.DeadlineExceeded) {
		a.log.Warn().Err(stopErr).Msg("http shutdown")
	}

	return err
}
