// Package trust computes per-organization trust scores from historical
// decision outcomes. Scores are derived, ephemeral aggregates: cached
// with a TTL, recomputed on demand, and invalidated synchronously when
// new history arrives.
package trust

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/stewardhq/steward/internal/clock"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/model"
	"github.com/stewardhq/steward/internal/store"
)

// Scorer computes and caches trust scores. Concurrent Score calls for
// one organization during a cold cache collapse into a single
// computation via singleflight; recomputation is idempotent either way.
type Scorer struct {
	store  store.Store
	clock  clock.Clock
	params config.TrustParams
	cache  *gocache.Cache
	group  singleflight.Group
	log    *zap.Logger
}

// NewScorer creates a Scorer. A nil logger defaults to a nop logger.
func NewScorer(st store.Store, clk clock.Clock, params config.TrustParams, log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	ttl := time.Duration(params.CacheTTLMinutes) * time.Minute
	return &Scorer{
		store:  st,
		clock:  clk,
		params: params,
		cache:  gocache.New(ttl, 2*ttl),
		log:    log,
	}
}

// Score returns the organization's trust score, computing it if the
// cached value is missing or stale. Storage read failures propagate:
// a wrong trust score could approve a high-risk action, so only the
// absence of history (not an error) defaults to neutral.
func (s *Scorer) Score(organizationID string) (model.TrustScore, error) {
	if v, ok := s.cache.Get(organizationID); ok {
		return v.(model.TrustScore), nil
	}

	v, err, _ := s.group.Do(organizationID, func() (any, error) {
		// Another caller may have populated the cache while this one
		// waited on the flight.
		if v, ok := s.cache.Get(organizationID); ok {
			return v.(model.TrustScore), nil
		}

		score, err := s.compute(organizationID)
		if err != nil {
			return model.TrustScore{}, err
		}
		s.cache.Set(organizationID, score, gocache.DefaultExpiration)
		return score, nil
	})
	if err != nil {
		return model.TrustScore{}, err
	}
	return v.(model.TrustScore), nil
}

// RecordEvent appends a trust event and synchronously invalidates the
// organization's cached score, so a subsequent Score call is
// guaranteed to reflect the new event.
func (s *Scorer) RecordEvent(ev model.TrustEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.clock.Now()
	}

	if err := s.store.AppendEvent(ev); err != nil {
		return fmt.Errorf("append trust event: %w", err)
	}
	s.Invalidate(ev.OrganizationID)
	return nil
}

// Invalidate drops the organization's cached score. Called on every
// trust event append and on governance config changes.
func (s *Scorer) Invalidate(organizationID string) {
	s.cache.Delete(organizationID)
}

// neutral is the score returned for an organization with no history.
func (s *Scorer) neutral(organizationID string) model.TrustScore {
	categories := make(map[model.RiskCategory]float64, len(model.RiskCategories))
	for _, c := range model.RiskCategories {
		categories[c] = s.params.NeutralScore
	}
	return model.TrustScore{
		OrganizationID: organizationID,
		Overall:        s.params.NeutralScore,
		Categories:     categories,
		Confidence:     s.params.NeutralConfidence,
		ComputedAt:     s.clock.Now(),
		SampleSize:     0,
	}
}

func (s *Scorer) compute(organizationID string) (model.TrustScore, error) {
	now := s.clock.Now()
	since := now.Add(-time.Duration(s.params.WindowDays) * 24 * time.Hour)

	events, err := s.store.EventsSince(organizationID, since)
	if err != nil {
		return model.TrustScore{}, fmt.Errorf("read trust events: %w", err)
	}
	if len(events) == 0 {
		return s.neutral(organizationID), nil
	}

	successRate := s.successRate(events)
	feedbackAccuracy := s.feedbackAccuracy(events)

	categories := make(map[model.RiskCategory]float64, len(model.RiskCategories))
	for _, c := range model.RiskCategories {
		categories[c] = s.categoryScore(events, c)
	}
	categoryAvg := lo.Sum(lo.Values(categories)) / float64(len(categories))

	direct := s.params.SuccessWeight*successRate + s.params.FeedbackWeight*feedbackAccuracy
	overall := clamp01(s.params.BlendDirect*direct + s.params.BlendCategory*categoryAvg)

	score := model.TrustScore{
		OrganizationID: organizationID,
		Overall:        overall,
		Categories:     categories,
		Confidence:     s.confidence(events),
		ComputedAt:     now,
		SampleSize:     len(events),
	}

	s.log.Debug("trust score computed",
		zap.String("organization_id", organizationID),
		zap.Float64("overall", score.Overall),
		zap.Float64("confidence", score.Confidence),
		zap.Int("sample_size", score.SampleSize),
	)
	return score, nil
}

// successRate is the fraction of outcome-bearing events that succeeded.
// With no observed outcomes yet the rate is neutral.
func (s *Scorer) successRate(events []model.TrustEvent) float64 {
	observed := lo.Filter(events, func(ev model.TrustEvent, _ int) bool { return ev.Outcome != nil })
	if len(observed) == 0 {
		return s.params.NeutralScore
	}
	successes := lo.CountBy(observed, func(ev model.TrustEvent) bool { return *ev.Outcome == model.OutcomeSuccess })
	return float64(successes) / float64(len(observed))
}

// feedbackAccuracy measures how often human feedback agreed with the
// observed outcome (correct vs success, incorrect vs failure), over
// events carrying both signals.
func (s *Scorer) feedbackAccuracy(events []model.TrustEvent) float64 {
	both := lo.Filter(events, func(ev model.TrustEvent, _ int) bool {
		return ev.Outcome != nil && ev.HumanFeedback != nil
	})
	if len(both) == 0 {
		return s.params.NeutralScore
	}
	agree := lo.CountBy(both, func(ev model.TrustEvent) bool {
		switch *ev.HumanFeedback {
		case model.FeedbackCorrect:
			return *ev.Outcome == model.OutcomeSuccess
		case model.FeedbackIncorrect:
			return *ev.Outcome == model.OutcomeFailure
		default:
			return *ev.Outcome == model.OutcomePartial
		}
	})
	return float64(agree) / float64(len(both))
}

// categoryScore is the success rate over events touching the category,
// shifted by a scaled human-feedback balance, clamped to [0,1].
func (s *Scorer) categoryScore(events []model.TrustEvent, c model.RiskCategory) float64 {
	touching := lo.Filter(events, func(ev model.TrustEvent, _ int) bool {
		return ev.Assessment.Touches(c)
	})
	if len(touching) == 0 {
		return s.params.NeutralScore
	}

	score := s.successRate(touching)

	withFeedback := lo.Filter(touching, func(ev model.TrustEvent, _ int) bool { return ev.HumanFeedback != nil })
	if len(withFeedback) > 0 {
		correct := lo.CountBy(withFeedback, func(ev model.TrustEvent) bool { return *ev.HumanFeedback == model.FeedbackCorrect })
		incorrect := lo.CountBy(withFeedback, func(ev model.TrustEvent) bool { return *ev.HumanFeedback == model.FeedbackIncorrect })
		score += float64(correct-incorrect) / float64(len(withFeedback)) * s.params.CategoryFeedback
	}

	return clamp01(score)
}

// confidence rises monotonically with sample size (saturating) and
// outcome consistency, boosted by human feedback coverage. Never below
// the configured floor.
func (s *Scorer) confidence(events []model.TrustEvent) float64 {
	sample := float64(len(events)) / float64(s.params.SampleSaturation)
	if sample > 1 {
		sample = 1
	}

	consistency := 1.0
	observed := lo.Filter(events, func(ev model.TrustEvent, _ int) bool { return ev.Outcome != nil })
	if len(observed) >= 2 {
		successes := lo.CountBy(observed, func(ev model.TrustEvent) bool { return *ev.Outcome == model.OutcomeSuccess })
		ratio := float64(successes) / float64(len(observed))
		consistency = abs(ratio-0.5) * 2
	}

	withFeedback := lo.CountBy(events, func(ev model.TrustEvent) bool { return ev.HumanFeedback != nil })
	coverage := float64(withFeedback) / float64(len(events))

	conf := sample * consistency * (1 + s.params.CoverageBoost*coverage)
	if conf < s.params.MinConfidence {
		conf = s.params.MinConfidence
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
