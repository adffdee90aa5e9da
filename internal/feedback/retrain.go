package feedback

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/stewardhq/steward/internal/model"
)

// EvaluateRetrainingNeed computes a trailing performance snapshot for
// each downstream predictive model and files a retraining task when
// the window looks unhealthy. Retraining execution itself belongs to
// an external scheduler; this only publishes the trigger.
func (l *Loop) EvaluateRetrainingNeed(organizationID string) ([]model.RetrainingTask, error) {
	p := l.params.Retraining
	now := l.clock.Now()

	entries, err := l.store.FeedbackSince(organizationID, now.AddDate(0, 0, -p.WindowDays))
	if err != nil {
		return nil, fmt.Errorf("read feedback window: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	snapshot := l.snapshot(organizationID, entries, now)

	var tasks []model.RetrainingTask
	for _, mt := range model.ModelTypes {
		snap := snapshot
		snap.Model = mt
		if err := l.store.SaveSnapshot(snap); err != nil {
			l.log.Warn("snapshot save failed", zap.String("model", string(mt)), zap.Error(err))
		}

		reason, needed := retrainingReason(snap, p.AccuracyThreshold, p.RatingThreshold)
		if !needed {
			continue
		}

		task := model.RetrainingTask{
			ID:             uuid.NewString(),
			OrganizationID: organizationID,
			Model:          mt,
			Reason:         reason,
			Priority:       priorityForReason(reason),
			CreatedAt:      now,
		}
		if err := l.store.SaveRetrainingTask(task); err != nil {
			l.log.Warn("retraining task save failed", zap.String("model", string(mt)), zap.Error(err))
		}
		l.publisher.Publish(EventRetrainingTriggered, map[string]any{
			"organization_id": organizationID,
			"task_id":         task.ID,
			"model":           string(mt),
			"reason":          reason,
			"priority":        string(task.Priority),
		})
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// snapshot computes the window's performance: positive-feedback ratio
// as accuracy, average rating, and a two-half trend comparison with a
// dead band.
func (l *Loop) snapshot(organizationID string, entries []model.FeedbackEntry, now time.Time) model.ModelPerformance {
	p := l.params.Retraining

	accuracy := positiveRate(entries)
	avgRating := lo.SumBy(entries, func(fb model.FeedbackEntry) float64 { return float64(fb.Rating) }) / float64(len(entries))

	midpoint := now.Add(-time.Duration(p.WindowDays) * 24 * time.Hour / 2)
	first := lo.Filter(entries, func(fb model.FeedbackEntry, _ int) bool { return fb.CreatedAt.Before(midpoint) })
	second := lo.Filter(entries, func(fb model.FeedbackEntry, _ int) bool { return !fb.CreatedAt.Before(midpoint) })

	trend := model.TrendStable
	if len(first) > 0 && len(second) > 0 {
		delta := positiveRate(second) - positiveRate(first)
		switch {
		case delta > p.TrendDeadBand:
			trend = model.TrendImproving
		case delta < -p.TrendDeadBand:
			trend = model.TrendDeclining
		}
	}

	return model.ModelPerformance{
		OrganizationID: organizationID,
		WindowDays:     p.WindowDays,
		Accuracy:       accuracy,
		AverageRating:  avgRating,
		Trend:          trend,
		SampleSize:     len(entries),
		ComputedAt:     now,
	}
}

// retrainingReason builds the human-readable trigger reason. Rating
// problems take precedence over accuracy problems in the wording.
func retrainingReason(snap model.ModelPerformance, accuracyThreshold, ratingThreshold float64) (string, bool) {
	var reason string
	switch {
	case snap.AverageRating < ratingThreshold:
		reason = fmt.Sprintf("low user satisfaction: average rating %.1f over last %d days", snap.AverageRating, snap.WindowDays)
	case snap.Accuracy < accuracyThreshold:
		reason = fmt.Sprintf("accuracy drop: positive-feedback ratio %.2f below %.2f", snap.Accuracy, accuracyThreshold)
	default:
		return "", false
	}

	if snap.Trend == model.TrendDeclining {
		reason += "; declining trend over the window"
	}
	return reason, true
}

// priorityForReason derives task priority from the reason wording.
func priorityForReason(reason string) model.TaskPriority {
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "accuracy drop") || strings.Contains(lower, "critical"):
		return model.PriorityHigh
	case strings.Contains(lower, "declining") || strings.Contains(lower, "satisfaction"):
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
