package validate

import (
	"fmt"
	"strings"

	"github.com/correlate-dev/zennpub/internal/article"
)

// group collects file names per key, keeping first-seen key order.
type group struct {
	keys    []string
	members map[string][]string
}

func newGroup() *group { return &group{members: make(map[string][]string)} }

func (g *group) add(key, file string) {
	if _, ok := g.members[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.members[key] = append(g.members[key], file)
}

func scheduledAt(a *article.Article) (string, bool) {
	raw, ok := a.RawPublishedAt()
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// ScheduleConflictRule reports articles sharing the same published_at.
type ScheduleConflictRule struct{}

func (r *ScheduleConflictRule) Name() string { return "schedule-conflict" }

func (r *ScheduleConflictRule) Check(articles []*article.Article) []Issue {
	g := newGroup()
	for _, a := range articles {
		if at, ok := scheduledAt(a); ok {
			g.add(at, fileName(a))
		}
	}
	var out []Issue
	for _, at := range g.keys {
		files := g.members[at]
		if len(files) < 2 {
			continue
		}
		out = append(out, Issue{
			Severity: SeverityError,
			Rule:     r.Name(),
			Tag:      TagConflict,
			Message:  fmt.Sprintf("%s is shared by %d articles: %s", at, len(files), strings.Join(files, ", ")),
			Articles: files,
		})
	}
	return out
}

// DailyLimitRule reports dates holding more than Max scheduled articles.
type DailyLimitRule struct {
	Max int
}

func (r *DailyLimitRule) Name() string { return "daily-limit" }

func (r *DailyLimitRule) Check(articles []*article.Article) []Issue {
	g := newGroup()
	for _, a := range articles {
		if at, ok := scheduledAt(a); ok {
			date, _, _ := strings.Cut(strings.Replace(at, "T", " ", 1), " ")
			g.add(date, fileName(a))
		}
	}
	var out []Issue
	for _, date := range g.keys {
		files := g.members[date]
		if len(files) <= r.Max {
			continue
		}
		out = append(out, Issue{
			Severity: SeverityError,
			Rule:     r.Name(),
			Tag:      TagRate,
			Message:  fmt.Sprintf("%s has %d articles (limit %d): %s", date, len(files), r.Max, strings.Join(files, ", ")),
			Articles: files,
		})
	}
	return out
}
