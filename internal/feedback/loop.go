// Package feedback implements the continuous-learning loop: it ingests
// outcome signals about past decisions, feeds them back into trust
// scoring, accumulates knowledge patterns, derives insights, and
// triggers retraining of downstream predictive models.
package feedback

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stewardhq/steward/internal/clock"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/model"
	"github.com/stewardhq/steward/internal/publish"
	"github.com/stewardhq/steward/internal/store"
	"github.com/stewardhq/steward/internal/trust"
)

// Published event types.
const (
	EventRetrainingTriggered = "model-retraining-triggered"
	EventInsightGenerated    = "learning-insight-generated"
)

// Loop is the feedback/continuous-learning service.
type Loop struct {
	store     store.Store
	trust     *trust.Scorer
	publisher publish.Publisher
	clock     clock.Clock
	params    *config.Params
	log       *zap.Logger
}

// NewLoop creates a Loop. Nil publisher, clock, params, and logger get
// defaults.
func NewLoop(st store.Store, tr *trust.Scorer, pub publish.Publisher, clk clock.Clock, params *config.Params, log *zap.Logger) *Loop {
	if pub == nil {
		pub = publish.Nop{}
	}
	if clk == nil {
		clk = clock.System()
	}
	if params == nil {
		params = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{store: st, trust: tr, publisher: pub, clock: clk, params: params, log: log}
}

// CollectRequest carries the raw fields of one feedback signal.
type CollectRequest struct {
	OrganizationID string
	ActionPlanID   string
	ContactID      string
	Source         model.FeedbackSource
	Kind           model.FeedbackKind
	Rating         int
	Details        model.FeedbackDetails
}

// Collect ingests one feedback signal: derives its confidence and
// model impact, persists it, and processes it immediately when the
// signal is strong enough to matter right away.
func (l *Loop) Collect(req CollectRequest) (model.FeedbackEntry, error) {
	p := l.params.Feedback

	fb := model.FeedbackEntry{
		ID:             uuid.NewString(),
		OrganizationID: req.OrganizationID,
		ActionPlanID:   req.ActionPlanID,
		ContactID:      req.ContactID,
		Source:         req.Source,
		Kind:           req.Kind,
		Rating:         req.Rating,
		Details:        req.Details,
		CreatedAt:      l.clock.Now(),
	}
	fb.Confidence = l.feedbackConfidence(fb)
	fb.Impact = l.modelImpact(fb)

	if err := l.store.SaveFeedback(fb); err != nil {
		return model.FeedbackEntry{}, fmt.Errorf("save feedback: %w", err)
	}

	if fb.Confidence > p.HighConfidence && abs(fb.Impact.TrustScoreAdjustment) > p.ImmediateThreshold {
		if err := l.Process(fb); err != nil {
			return model.FeedbackEntry{}, err
		}
		fb.Processed = true
	}

	return fb, nil
}

// feedbackConfidence starts from the source base and adds bonuses for
// outcome-grade feedback kinds, rich context, and substantive text.
func (l *Loop) feedbackConfidence(fb model.FeedbackEntry) float64 {
	p := l.params.Feedback
	conf := p.BaseFor(string(fb.Source))

	if fb.Kind == model.KindOutcomeSatisfaction || fb.Kind == model.KindBusinessImpact {
		conf += p.TypeBonus
	}
	if len(fb.Details.ContextFactors) > p.RichContextMin {
		conf += p.RichContextBonus
	}
	if len(fb.Details.Text) > p.LongTextMinChars {
		conf += p.LongTextBonus
	}

	if conf < p.MinConfidence {
		conf = p.MinConfidence
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// modelImpact derives the trust-model deltas this entry will apply.
func (l *Loop) modelImpact(fb model.FeedbackEntry) model.ModelImpact {
	p := l.params.Feedback

	impact := model.ModelImpact{
		TrustScoreAdjustment: float64(fb.Rating-3) / 10 * fb.Confidence,
	}
	if fb.Confidence > p.HighConfidence {
		impact.ConfidenceAdjustment = p.ConfidenceBonus
	} else {
		impact.ConfidenceAdjustment = -p.ConfidencePenalty
	}

	if fb.Positive() {
		impact.ReinforcedPatterns = append(impact.ReinforcedPatterns, "positive_"+string(fb.Kind))
	} else if fb.Negative() {
		impact.ReinforcedPatterns = append(impact.ReinforcedPatterns, "negative_"+string(fb.Kind))
	}
	if fb.Confidence > p.HighConfidence {
		if fb.Positive() {
			impact.ReinforcedPatterns = append(impact.ReinforcedPatterns, "high_confidence_success")
		} else if fb.Negative() {
			impact.ReinforcedPatterns = append(impact.ReinforcedPatterns, "high_confidence_failure")
		}
	}

	return impact
}

// Process applies one feedback entry to the trust model and knowledge
// base. Idempotent: an entry already marked processed in the store is
// a no-op.
func (l *Loop) Process(fb model.FeedbackEntry) error {
	stored, err := l.store.Feedback(fb.ID)
	if err == nil && stored.Processed {
		return nil
	}
	if err != nil && err != store.ErrNotFound {
		return fmt.Errorf("read feedback: %w", err)
	}

	outcome := outcomeForRating(fb.Rating)
	label := labelForRating(fb.Rating)
	ev := model.TrustEvent{
		OrganizationID: fb.OrganizationID,
		ActionPlanID:   fb.ActionPlanID,
		TrustLevel:     fb.Impact.TrustScoreAdjustment,
		Decision:       model.StatusApproved,
		Outcome:        &outcome,
		HumanFeedback:  &label,
		Timestamp:      l.clock.Now(),
	}
	if err := l.trust.RecordEvent(ev); err != nil {
		return fmt.Errorf("feed trust model: %w", err)
	}

	patterns := l.extractPatterns(fb)
	for _, pat := range patterns {
		delta := fb.Confidence * l.params.Feedback.PatternConfidenceStep
		if err := l.store.UpsertPattern(fb.OrganizationID, pat, delta, l.clock.Now()); err != nil {
			l.log.Warn("pattern upsert failed", zap.String("pattern", pat), zap.Error(err))
		}
	}

	if len(patterns) > 0 {
		if _, err := l.GenerateInsights(fb.OrganizationID); err != nil {
			l.log.Warn("insight generation failed", zap.String("organization_id", fb.OrganizationID), zap.Error(err))
		}
	}

	if _, err := l.EvaluateRetrainingNeed(fb.OrganizationID); err != nil {
		l.log.Warn("retraining evaluation failed", zap.String("organization_id", fb.OrganizationID), zap.Error(err))
	}

	if err := l.store.MarkProcessed(fb.ID); err != nil {
		return fmt.Errorf("mark feedback processed: %w", err)
	}
	return nil
}

// ProcessBacklog processes every unprocessed feedback entry in the
// trailing insight window. Used by the optional periodic flush.
func (l *Loop) ProcessBacklog(organizationID string) (int, error) {
	since := l.clock.Now().AddDate(0, 0, -l.params.Insights.WindowDays)
	entries, err := l.store.FeedbackSince(organizationID, since)
	if err != nil {
		return 0, fmt.Errorf("read feedback backlog: %w", err)
	}

	processed := 0
	for _, fb := range entries {
		if fb.Processed {
			continue
		}
		if err := l.Process(fb); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

// outcomeForRating translates a 1-5 rating into a trust outcome.
func outcomeForRating(rating int) model.Outcome {
	switch {
	case rating >= 4:
		return model.OutcomeSuccess
	case rating <= 2:
		return model.OutcomeFailure
	default:
		return model.OutcomePartial
	}
}

// labelForRating translates a 1-5 rating into a human-feedback label.
func labelForRating(rating int) model.HumanFeedback {
	switch {
	case rating >= 4:
		return model.FeedbackCorrect
	case rating <= 2:
		return model.FeedbackIncorrect
	default:
		return model.FeedbackPartiallyCorrect
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
