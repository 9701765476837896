package bot

import (
	"context"
	"errors"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gitlab.com/centavo/ingest-bot/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Run starts processing updates and blocks until ctx is cancelled.
//
// When a webhook URL is configured the bot registers it with Telegram and
// serves updates over HTTP, otherwise it falls back to long polling.
func (b *Bot) Run(ctx context.Context) error {
	if b.cfg.WebhookURL == "" {
		logger.Log.Info().Msg("Starting bot in long polling mode")
		b.bot.Start(ctx)
		return nil
	}
	return b.runWebhook(ctx)
}

func (b *Bot) runWebhook(ctx context.Context) error {
	ok, err := b.bot.SetWebhook(ctx, &tgbot.SetWebhookParams{
		URL: b.cfg.WebhookURL,
	})
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("telegram rejected webhook registration")
	}

	mux := http.NewServeMux()
	mux.Handle("/webhook", b.bot.WebhookHandler())
	mux.HandleFunc("/healthz", b.handleHealthz)

	srv := &http.Server{
		Addr:              b.cfg.ListenAddr,
		Handler:           otelhttp.NewHandler(mux, "ingest-bot"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info().
			Str("addr", b.cfg.ListenAddr).
			Str("webhook_url", b.cfg.WebhookURL).
			Msg("Webhook server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// StartWebhook consumes the updates the handler queues.
	go b.bot.StartWebhook(ctx)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Webhook server shutdown failed")
		return err
	}
	logger.Log.Info().Msg("Webhook server stopped")
	return nil
}

func (b *Bot) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := b.pool.Ping(r.Context()); err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
