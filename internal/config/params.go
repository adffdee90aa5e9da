// Package config holds the tunable policy parameters of the governance
// core. Every constant that shapes scoring or feedback handling lives
// here so operators can adjust policy without a rebuild; the defaults
// are the empirically-derived production values and should not be
// changed without product input.
package config

// TrustParams tunes trust score computation and caching.
type TrustParams struct {
	WindowDays        int     `yaml:"window_days"`
	CacheTTLMinutes   int     `yaml:"cache_ttl_minutes"`
	NeutralScore      float64 `yaml:"neutral_score"`
	NeutralConfidence float64 `yaml:"neutral_confidence"`
	// Overall = BlendDirect x (SuccessWeight x successRate +
	// FeedbackWeight x feedbackAccuracy) + BlendCategory x avg(categories).
	SuccessWeight    float64 `yaml:"success_weight"`
	FeedbackWeight   float64 `yaml:"feedback_weight"`
	BlendDirect      float64 `yaml:"blend_direct"`
	BlendCategory    float64 `yaml:"blend_category"`
	CategoryFeedback float64 `yaml:"category_feedback_scale"`
	SampleSaturation int     `yaml:"sample_saturation"`
	CoverageBoost    float64 `yaml:"feedback_coverage_boost"`
	MinConfidence    float64 `yaml:"min_confidence"`
}

// RiskParams tunes risk assessment confidence and structural factors.
type RiskParams struct {
	BaseConfidence   float64 `yaml:"base_confidence"`
	PerFactorBonus   float64 `yaml:"per_factor_bonus"`
	FactorBonusCap   float64 `yaml:"factor_bonus_cap"`
	KnownActionBoost float64 `yaml:"known_action_boost"`
	LongPlanActions  int     `yaml:"long_plan_actions"`
}

// FeedbackParams tunes feedback confidence and model impact derivation.
type FeedbackParams struct {
	HumanBase    float64 `yaml:"human_base"`
	CustomerBase float64 `yaml:"customer_base"`
	SystemBase   float64 `yaml:"system_base"`
	OutcomeBase  float64 `yaml:"outcome_base"`

	TypeBonus        float64 `yaml:"type_bonus"`
	RichContextBonus float64 `yaml:"rich_context_bonus"`
	RichContextMin   int     `yaml:"rich_context_min_factors"`
	LongTextBonus    float64 `yaml:"long_text_bonus"`
	LongTextMinChars int     `yaml:"long_text_min_chars"`
	MinConfidence    float64 `yaml:"min_confidence"`

	HighConfidence     float64 `yaml:"high_confidence_threshold"`
	ConfidenceBonus    float64 `yaml:"confidence_bonus"`
	ConfidencePenalty  float64 `yaml:"confidence_penalty"`
	ImmediateThreshold float64 `yaml:"immediate_adjustment_threshold"`

	PatternConfidenceStep float64 `yaml:"pattern_confidence_step"`
}

// InsightParams tunes learning insight generation.
type InsightParams struct {
	WindowDays           int     `yaml:"window_days"`
	MinCategoryFeedback  int     `yaml:"min_category_feedback"`
	ImprovementThreshold float64 `yaml:"improvement_positive_rate"`
	TimingMinCount       int     `yaml:"timing_min_count"`
	TimingPositiveRate   float64 `yaml:"timing_positive_rate"`
	TimingConfidence     float64 `yaml:"timing_confidence"`
}

// RetrainingParams tunes retraining-need evaluation.
type RetrainingParams struct {
	WindowDays        int     `yaml:"window_days"`
	AccuracyThreshold float64 `yaml:"accuracy_threshold"`
	RatingThreshold   float64 `yaml:"rating_threshold"`
	TrendDeadBand     float64 `yaml:"trend_dead_band"`
}

// Params is the complete tunable parameter set.
type Params struct {
	Trust      TrustParams      `yaml:"trust"`
	Risk       RiskParams       `yaml:"risk"`
	Feedback   FeedbackParams   `yaml:"feedback"`
	Insights   InsightParams    `yaml:"insights"`
	Retraining RetrainingParams `yaml:"retraining"`

	ConfigCacheTTLMinutes int `yaml:"config_cache_ttl_minutes"`
}

// Default returns the built-in parameter set.
func Default() *Params {
	return &Params{
		Trust: TrustParams{
			WindowDays:        30,
			CacheTTLMinutes:   30,
			NeutralScore:      0.5,
			NeutralConfidence: 0.1,
			SuccessWeight:     0.7,
			FeedbackWeight:    0.3,
			BlendDirect:       0.6,
			BlendCategory:     0.4,
			CategoryFeedback:  0.1,
			SampleSaturation:  100,
			CoverageBoost:     0.2,
			MinConfidence:     0.1,
		},
		Risk: RiskParams{
			BaseConfidence:   0.7,
			PerFactorBonus:   0.05,
			FactorBonusCap:   0.2,
			KnownActionBoost: 0.1,
			LongPlanActions:  5,
		},
		Feedback: FeedbackParams{
			HumanBase:             0.8,
			CustomerBase:          0.9,
			SystemBase:            0.7,
			OutcomeBase:           0.95,
			TypeBonus:             0.1,
			RichContextBonus:      0.05,
			RichContextMin:        3,
			LongTextBonus:         0.05,
			LongTextMinChars:      50,
			MinConfidence:         0.1,
			HighConfidence:        0.8,
			ConfidenceBonus:       0.05,
			ConfidencePenalty:     0.02,
			ImmediateThreshold:    0.1,
			PatternConfidenceStep: 0.1,
		},
		Insights: InsightParams{
			WindowDays:           30,
			MinCategoryFeedback:  5,
			ImprovementThreshold: 0.6,
			TimingMinCount:       10,
			TimingPositiveRate:   0.7,
			TimingConfidence:     0.8,
		},
		Retraining: RetrainingParams{
			WindowDays:        7,
			AccuracyThreshold: 0.7,
			RatingThreshold:   3.0,
			TrendDeadBand:     0.05,
		},
		ConfigCacheTTLMinutes: 30,
	}
}

// BaseFor returns the source-based feedback confidence base.
func (p FeedbackParams) BaseFor(source string) float64 {
	switch source {
	case "human":
		return p.HumanBase
	case "customer":
		return p.CustomerBase
	case "system":
		return p.SystemBase
	case "outcome":
		return p.OutcomeBase
	default:
		return p.SystemBase
	}
}
