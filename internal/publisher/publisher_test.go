package publisher

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/correlate-dev/zennpub/internal/history"
	"github.com/correlate-dev/zennpub/internal/metrics"
	helpers "github.com/correlate-dev/zennpub/internal/testutil/testutils"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var now = time.Date(2025, 2, 1, 7, 0, 0, 0, helpers.JST)

func newWorkspace(t *testing.T, queue string) *helpers.Workspace {
	t.Helper()
	ws := helpers.NewWorkspace(t, now)
	ws.WriteFile(ws.Config.Paths.PublishQueue, queue)
	return ws
}

func count(n int) *int { return &n }

func TestParseQueue(t *testing.T) {
	slugs, err := ParseQueue(strings.NewReader("# priority\n\na\n  b  \n#c\nd\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "d"}, slugs)
}

func TestReadQueue_MissingFile(t *testing.T) {
	slugs, err := ReadQueue(t.TempDir() + "/none.txt")
	require.NoError(t, err)
	require.Empty(t, slugs)
}

func TestRun_QuotaExhaustedChangesNothing(t *testing.T) {
	for _, dry := range []bool{false, true} {
		ws := newWorkspace(t, "a\nb\n")
		ws.WriteArticle("a", helpers.Draft("a"))
		ws.WriteArticle("b", helpers.Draft("b"))

		p := New(ws.Config, &history.Fake{Count: 4})
		report, err := p.Run(context.Background(), Options{Count: count(2), DryRun: dry})
		require.NoError(t, err)
		require.Zero(t, report.Effective)
		require.Empty(t, report.Selected)
		require.Equal(t, helpers.Draft("a"), ws.ReadArticle("a"))
		require.Equal(t, helpers.Draft("b"), ws.ReadArticle("b"))
	}
}

func TestRun_HistoryFailureAssumesLimit(t *testing.T) {
	ws := newWorkspace(t, "a\n")
	ws.WriteArticle("a", helpers.Draft("a"))

	report, err := New(ws.Config, &history.Fake{CountErr: errors.New("git broken")}).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Error(t, report.HistoryErr)
	require.Zero(t, report.Effective)
	require.True(t, strings.Contains(ws.ReadArticle("a"), "published: false"))
}

func TestRun_SkipsPublishedAndCooldown(t *testing.T) {
	ws := newWorkspace(t, "a\nb\nc\n")
	ws.WriteArticle("a", helpers.Published("a", ""))
	ws.WriteArticle("b", helpers.Draft("b"))
	ws.WriteArticle("c", helpers.Draft("c"))
	ws.WriteFile(ws.Config.Paths.FailureLog, `{"b": {"count": 1, "last_failed": "`+now.Add(-47*time.Hour).Format(time.RFC3339)+`"}}`)

	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	report, err := New(ws.Config, &history.Fake{Count: 2}, WithRecorder(rec)).Run(context.Background(), Options{Count: count(2)})
	require.NoError(t, err)

	require.Equal(t, 2, report.Effective)
	require.Equal(t, []string{"b"}, report.Cooldown)
	require.Equal(t, []string{"c"}, report.Published)
	require.Equal(t, helpers.Published("a", ""), ws.ReadArticle("a"))
	require.Equal(t, helpers.Draft("b"), ws.ReadArticle("b"))
	require.Equal(t, strings.Replace(helpers.Draft("c"), "published: false", "published: true", 1), ws.ReadArticle("c"))

	n, err := testutil.GatherAndCount(reg, "zennpub_articles_published_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestRun_CooldownExpiresAfter48h(t *testing.T) {
	ws := newWorkspace(t, "b\n")
	ws.WriteArticle("b", helpers.Draft("b"))
	ws.WriteFile(ws.Config.Paths.FailureLog, `{"b": {"count": 1, "last_failed": "`+now.Add(-49*time.Hour).Format("2006-01-02T15:04:05")+`"}}`)

	report, err := New(ws.Config, &history.Fake{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, report.Published)
}

func TestRun_RespectsQueueOrderAndCount(t *testing.T) {
	ws := newWorkspace(t, "missing\nz\ny\nx\n")
	for _, s := range []string{"x", "y", "z"} {
		ws.WriteArticle(s, helpers.Draft(s))
	}

	report, err := New(ws.Config, &history.Fake{Count: 1}).Run(context.Background(), Options{Count: count(5)})
	require.NoError(t, err)
	require.Equal(t, 3, report.Effective)
	require.Equal(t, []string{"z", "y", "x"}, report.Published)

	report, err = New(ws.Config, &history.Fake{}).Run(context.Background(), Options{Count: count(2)})
	require.NoError(t, err)
	require.Empty(t, report.Selected)
}

func TestRun_ZeroCountPublishesNothing(t *testing.T) {
	ws := newWorkspace(t, "a\nb\n")
	ws.WriteArticle("a", helpers.Draft("a"))
	ws.WriteArticle("b", helpers.Draft("b"))

	report, err := New(ws.Config, &history.Fake{}).Run(context.Background(), Options{Count: count(0)})
	require.NoError(t, err)
	require.Equal(t, 0, report.Effective)
	require.Empty(t, report.Selected)
	require.Empty(t, report.Published)
	require.Equal(t, helpers.Draft("a"), ws.ReadArticle("a"))
	require.Equal(t, helpers.Draft("b"), ws.ReadArticle("b"))

	var buf bytes.Buffer
	report.Print(&buf)
	require.Contains(t, buf.String(), "nothing requested")

	// nil falls back to the configured count
	report, err = New(ws.Config, &history.Fake{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, report.Published)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	ws := newWorkspace(t, "a\n")
	ws.WriteArticle("a", helpers.Draft("a"))

	report, err := New(ws.Config, &history.Fake{}).Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, report.Selected)
	require.Empty(t, report.Published)
	require.Equal(t, helpers.Draft("a"), ws.ReadArticle("a"))

	var buf bytes.Buffer
	report.Print(&buf)
	require.Contains(t, buf.String(), "[DRY RUN] selected 1:")
	require.Contains(t, buf.String(), "--dry-run: no files changed")
}

func TestRun_Idempotent(t *testing.T) {
	ws := newWorkspace(t, "a\nb\n")
	ws.WriteArticle("a", helpers.Draft("a"))
	ws.WriteArticle("b", helpers.Draft("b"))
	src := &history.Fake{}

	first, err := New(ws.Config, src).Run(context.Background(), Options{Count: count(2)})
	require.NoError(t, err)
	require.Len(t, first.Published, 2)
	a, b := ws.ReadArticle("a"), ws.ReadArticle("b")

	second, err := New(ws.Config, src).Run(context.Background(), Options{Count: count(2)})
	require.NoError(t, err)
	require.Empty(t, second.Selected)
	require.Equal(t, a, ws.ReadArticle("a"))
	require.Equal(t, b, ws.ReadArticle("b"))
}

func TestRun_ArticleWithoutFrontMatterIsNotDraft(t *testing.T) {
	ws := newWorkspace(t, "plain\n")
	ws.WriteArticle("plain", "just text\npublished: false\n")

	report, err := New(ws.Config, &history.Fake{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Empty(t, report.Selected)
	require.Equal(t, "just text\npublished: false\n", ws.ReadArticle("plain"))
}

func TestRun_CorruptFailureLogDisablesCooldown(t *testing.T) {
	ws := newWorkspace(t, "a\n")
	ws.WriteArticle("a", helpers.Draft("a"))
	ws.WriteFile(ws.Config.Paths.FailureLog, "not json")

	report, err := New(ws.Config, &history.Fake{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, report.Published)
}

func TestReport_PrintRateLimited(t *testing.T) {
	var buf bytes.Buffer
	(&Report{Recent: 4, Limit: 4}).Print(&buf)
	require.Equal(t, "publishes in the last 24h: 4 / daily limit: 4\nremaining quota: 0 -> to publish: 0\nrate limit reached, skipping today's publish\n", buf.String())
}
