package feedback

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/stewardhq/steward/internal/model"
)

// GenerateInsights evaluates the trailing feedback window against the
// three insight heuristics: struggling categories, strong timing
// patterns, and high-value-customer correlations. Generated insights
// are persisted (best-effort) and returned.
func (l *Loop) GenerateInsights(organizationID string) ([]model.LearningInsight, error) {
	p := l.params.Insights
	now := l.clock.Now()

	entries, err := l.store.FeedbackSince(organizationID, now.AddDate(0, 0, -p.WindowDays))
	if err != nil {
		return nil, fmt.Errorf("read feedback window: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	var insights []model.LearningInsight
	insights = append(insights, l.categoryInsights(organizationID, entries)...)
	if in, ok := l.timingInsight(organizationID, entries); ok {
		insights = append(insights, in)
	}
	if in, ok := l.highValueInsight(organizationID, entries); ok {
		insights = append(insights, in)
	}

	for i := range insights {
		insights[i].ID = uuid.NewString()
		insights[i].CreatedAt = now
		if err := l.store.SaveInsight(insights[i]); err != nil {
			l.log.Warn("insight save failed", zap.String("title", insights[i].Title), zap.Error(err))
			continue
		}
		l.publisher.Publish(EventInsightGenerated, map[string]any{
			"organization_id": organizationID,
			"insight_id":      insights[i].ID,
			"type":            string(insights[i].Type),
			"title":           insights[i].Title,
		})
	}
	return insights, nil
}

// categoryInsights flags any feedback category with enough evidence and
// a poor positive rate.
func (l *Loop) categoryInsights(organizationID string, entries []model.FeedbackEntry) []model.LearningInsight {
	p := l.params.Insights

	byCategory := lo.GroupBy(
		lo.Filter(entries, func(fb model.FeedbackEntry, _ int) bool { return fb.Details.Category != "" }),
		func(fb model.FeedbackEntry) string { return fb.Details.Category },
	)

	var out []model.LearningInsight
	for category, fbs := range byCategory {
		if len(fbs) < p.MinCategoryFeedback {
			continue
		}
		rate := positiveRate(fbs)
		if rate >= p.ImprovementThreshold {
			continue
		}
		out = append(out, model.LearningInsight{
			OrganizationID: organizationID,
			Type:           model.InsightImprovement,
			Title:          fmt.Sprintf("Underperforming category: %s", category),
			Description:    fmt.Sprintf("%d feedback items for %q with only %.0f%% positive; decisions in this category need attention", len(fbs), category, rate*100),
			Confidence:     0.7,
			EvidenceCount:  len(fbs),
			ImpactScore:    0.7,
			Recommended: []string{
				"review recent negative feedback in this category",
				"tighten approval requirements for the affected action types",
				"re-run risk templates against the failing plans",
			},
		})
	}
	return out
}

// timingInsight reports a strong positive timing pattern when enough
// timing-related feedback agrees.
func (l *Loop) timingInsight(organizationID string, entries []model.FeedbackEntry) (model.LearningInsight, bool) {
	p := l.params.Insights

	timing := lo.Filter(entries, func(fb model.FeedbackEntry, _ int) bool {
		return fb.Kind == model.KindTimingAppropriateness
	})
	if len(timing) < p.TimingMinCount {
		return model.LearningInsight{}, false
	}
	rate := positiveRate(timing)
	if rate <= p.TimingPositiveRate {
		return model.LearningInsight{}, false
	}

	return model.LearningInsight{
		OrganizationID: organizationID,
		Type:           model.InsightPattern,
		Title:          "Action timing is working",
		Description:    fmt.Sprintf("%.0f%% of %d timing feedback items are positive; current send windows are effective", rate*100, len(timing)),
		Confidence:     p.TimingConfidence,
		EvidenceCount:  len(timing),
		ImpactScore:    0.5,
		Recommended: []string{
			"keep the current scheduling windows",
			"extend the same windows to adjacent action types",
		},
	}, true
}

// highValueInsight reports when feedback is tagged to high-value
// customer contexts, which deserve a correlation look.
func (l *Loop) highValueInsight(organizationID string, entries []model.FeedbackEntry) (model.LearningInsight, bool) {
	highValue := lo.Filter(entries, func(fb model.FeedbackEntry, _ int) bool {
		return lo.ContainsBy(fb.Details.ContextFactors, func(f string) bool {
			return normalizePattern(f) == "high_value_customer"
		})
	})
	if len(highValue) == 0 {
		return model.LearningInsight{}, false
	}

	return model.LearningInsight{
		OrganizationID: organizationID,
		Type:           model.InsightCorrelation,
		Title:          "High-value customers appear in feedback",
		Description:    fmt.Sprintf("%d feedback items involve high-value customers (%.0f%% positive); their outcomes correlate with decision quality", len(highValue), positiveRate(highValue)*100),
		Confidence:     0.6,
		EvidenceCount:  len(highValue),
		ImpactScore:    0.8,
		Recommended: []string{
			"route high-value customer actions through an account owner",
			"compare approval rates between segments",
		},
	}, true
}

// positiveRate is the fraction of entries with a positive rating.
func positiveRate(entries []model.FeedbackEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	positive := lo.CountBy(entries, func(fb model.FeedbackEntry) bool { return fb.Positive() })
	return float64(positive) / float64(len(entries))
}
