// Package notify delivers run summaries to a Discord-compatible webhook.
package notify

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Failure describes one article found missing on the platform.
type Failure struct {
	Slug  string
	Title string
}

// Service sends notifications. Errors are for logging only; callers must not
// fail a run because of them.
type Service interface {
	NotifyFailures(ctx context.Context, failures []Failure) error
	NotifyPublished(ctx context.Context, slugs []string) error
	NotifyManualIntervention(ctx context.Context, slugs []string) error
}

// Noop is used when no webhook is configured.
type Noop struct{}

func (Noop) NotifyFailures(context.Context, []Failure) error          { return nil }
func (Noop) NotifyPublished(context.Context, []string) error          { return nil }
func (Noop) NotifyManualIntervention(context.Context, []string) error { return nil }

const titleRunes = 30

// FailureMessage renders the failure summary posted after verification.
func FailureMessage(failures []Failure) string {
	var b strings.Builder
	b.WriteString("🚨 **Zenn公開失敗検知**\n\n")
	b.WriteString("以下の記事が `published: true` ですが、Zennに公開されていません:\n\n")
	for _, f := range failures {
		fmt.Fprintf(&b, "- `%s` (%s...)\n", f.Slug, truncate(f.Title, titleRunes))
	}
	b.WriteString("\n**対処**: リトライキューに追加しました。次回デプロイで自動再試行します。\n\n")
	b.WriteString("**確認**: https://zenn.dev/dashboard\n")
	return b.String()
}

// ManualInterventionMessage renders the escalation for slugs that exhausted
// automated retries.
func ManualInterventionMessage(slugs []string, threshold int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ **Zenn公開: 手動対応が必要です**\n\n%d回以上公開に失敗したため自動リトライを停止しました:\n\n", threshold)
	for _, s := range slugs {
		fmt.Fprintf(&b, "- `%s`\n", s)
	}
	return b.String()
}

// truncate cuts s to at most n characters after NFC normalization so that
// combining sequences are not split.
func truncate(s string, n int) string {
	s = norm.NFC.String(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
