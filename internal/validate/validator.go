package validate

import (
	"github.com/correlate-dev/zennpub/internal/article"
	"github.com/correlate-dev/zennpub/internal/config"
)

// Validator runs per-article and cross-article rules.
type Validator struct {
	rules    []Rule
	schedule []CrossRule
	rate     []CrossRule
}

// NewValidator builds the standard rule set from cfg.
func NewValidator(cfg config.FrontmatterConfig) *Validator {
	return &Validator{
		rules: []Rule{
			&RequiredFieldsRule{Fields: cfg.RequiredFields},
			&PublishedComboRule{},
			&QuotedFieldRule{Fields: []string{article.KeyTitle, article.KeyEmoji}},
			&EnumFieldRule{Field: article.KeyType, Allowed: cfg.ValidTypes},
			&EnumFieldRule{Field: article.KeyPublicationName, Allowed: []string{cfg.Publication}},
			&TopicsInlineRule{},
		},
		schedule: []CrossRule{&ScheduleConflictRule{}},
		rate:     []CrossRule{&DailyLimitRule{Max: cfg.MaxPerDay}},
	}
}

// Validate checks every article and the set as a whole.
func (v *Validator) Validate(articles []*article.Article) *Result {
	result := &Result{FilesTotal: len(articles)}
	for _, a := range articles {
		for _, rule := range v.rules {
			result.Issues = append(result.Issues, rule.Check(a)...)
		}
	}
	result.Schedule, result.RateLimit = v.CheckCross(articles)
	return result
}

// CheckCross runs only the cross-article rules.
func (v *Validator) CheckCross(articles []*article.Article) (schedule, rate []Issue) {
	for _, rule := range v.schedule {
		schedule = append(schedule, rule.Check(articles)...)
	}
	for _, rule := range v.rate {
		rate = append(rate, rule.Check(articles)...)
	}
	return schedule, rate
}
