package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/correlate-dev/zennpub/internal/logfields"
	"github.com/correlate-dev/zennpub/internal/retry"
)

const publishedColor = 3066993

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type payload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

// Config configures the Discord notifier.
type Config struct {
	WebhookURL string
	Timeout    time.Duration
	Retry      retry.Policy
	// ArticleURL builds the public link for a slug.
	ArticleURL func(slug string) string
	// Threshold is quoted in the manual intervention message.
	Threshold int
}

// Discord posts to a Discord webhook.
type Discord struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// NewService returns a Discord notifier, or Noop when no URL is set.
func NewService(cfg Config, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return Noop{}
	}
	return NewDiscord(cfg, logger)
}

// NewDiscord returns a Discord notifier for cfg.
func NewDiscord(cfg Config, logger *slog.Logger) *Discord {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ArticleURL == nil {
		cfg.ArticleURL = func(slug string) string { return "https://zenn.dev/correlate/articles/" + slug }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Discord{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}, logger: logger}
}

// NotifyFailures posts the failure summary. No failures means no request.
func (d *Discord) NotifyFailures(ctx context.Context, failures []Failure) error {
	if len(failures) == 0 {
		return nil
	}
	return d.post(ctx, payload{Content: FailureMessage(failures)})
}

// NotifyPublished posts an embed linking each published article.
func (d *Discord) NotifyPublished(ctx context.Context, slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}
	lines := make([]string, 0, len(slugs))
	for _, s := range slugs {
		lines = append(lines, fmt.Sprintf("- [%s](%s)", s, d.cfg.ArticleURL(s)))
	}
	return d.post(ctx, payload{Embeds: []embed{{
		Title:       fmt.Sprintf("📝 Zenn %d本 公開", len(slugs)),
		Description: strings.Join(lines, "\n"),
		Color:       publishedColor,
	}}})
}

// NotifyManualIntervention posts the escalation for evicted slugs.
func (d *Discord) NotifyManualIntervention(ctx context.Context, slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}
	return d.post(ctx, payload{Content: ManualInterventionMessage(slugs, d.cfg.Threshold)})
}

func (d *Discord) post(ctx context.Context, p payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	start := time.Now()
	err = d.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		return d.send(ctx, body)
	})
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	d.logger.Debug("Webhook delivered", logfields.Duration(time.Since(start)))
	return nil
}

func (d *Discord) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", retry.ErrPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	default:
		return fmt.Errorf("%w: HTTP %d", retry.ErrPermanent, resp.StatusCode)
	}
}
