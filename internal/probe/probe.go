// Package probe checks whether an article is live on Zenn.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Status is the tri-state outcome of a probe.
type Status int

const (
	// Inconclusive means no definitive answer; callers must not act on it.
	Inconclusive Status = iota
	// Confirmed means the article page exists.
	Confirmed
	// NotFound means the platform answered that the article is not there.
	NotFound
)

func (s Status) String() string {
	switch s {
	case Confirmed:
		return "confirmed"
	case NotFound:
		return "not_found"
	default:
		return "inconclusive"
	}
}

// Outcome is the result of one probe.
type Outcome struct {
	Status     Status
	StatusCode int
	URL        string
	Err        error
}

// Checker is satisfied by Prober and by test doubles.
type Checker interface {
	Check(ctx context.Context, slug string) Outcome
}

// Prober issues HEAD requests against article URLs.
type Prober struct {
	baseURL   string
	username  string
	userAgent string
	client    *http.Client
}

// Option configures a Prober.
type Option func(*Prober)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option { return func(p *Prober) { p.client = c } }

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option { return func(p *Prober) { p.userAgent = ua } }

// New returns a Prober for <baseURL>/<username>/articles/<slug>.
func New(baseURL, username string, timeout time.Duration, opts ...Option) *Prober {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	p := &Prober{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after %d redirects", len(via))
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// URL returns the article URL for slug.
func (p *Prober) URL(slug string) string {
	return fmt.Sprintf("%s/%s/articles/%s", p.baseURL, url.PathEscape(p.username), url.PathEscape(slug))
}

// Check probes slug. It never returns an error; failures are Inconclusive.
func (p *Prober) Check(ctx context.Context, slug string) Outcome {
	target := p.URL(slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return Outcome{Status: Inconclusive, URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Outcome{Status: Inconclusive, URL: target, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	return Outcome{Status: Classify(resp.StatusCode), StatusCode: resp.StatusCode, URL: target, Err: statusErr(resp)}
}

// Classify maps an HTTP status to a probe status. 200 and 301 are live;
// rate limiting and server errors say nothing about the article.
func Classify(code int) Status {
	switch {
	case code == http.StatusOK || code == http.StatusMovedPermanently:
		return Confirmed
	case code == http.StatusTooManyRequests || code >= 500:
		return Inconclusive
	default:
		return NotFound
	}
}

func statusErr(resp *http.Response) error {
	if Classify(resp.StatusCode) == Confirmed {
		return nil
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
}
