package model

import "time"

// FeedbackDetails carries the structured body of a feedback signal.
type FeedbackDetails struct {
	Category       string   `json:"category,omitempty"`
	Text           string   `json:"text,omitempty"`
	ContextFactors []string `json:"context_factors,omitempty"`
}

// ModelImpact is the derived effect a feedback entry has on the trust
// model once processed.
type ModelImpact struct {
	TrustScoreAdjustment float64  `json:"trust_score_adjustment"`
	ConfidenceAdjustment float64  `json:"confidence_adjustment"`
	ReinforcedPatterns   []string `json:"reinforced_patterns,omitempty"`
}

// FeedbackEntry is one signal about a past decision's real-world
// result. Created on ingestion; mutated once to mark processed.
type FeedbackEntry struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	ActionPlanID   string          `json:"action_plan_id"`
	ContactID      string          `json:"contact_id,omitempty"`
	Source         FeedbackSource  `json:"source"`
	Kind           FeedbackKind    `json:"kind"`
	Rating         int             `json:"rating"`
	Confidence     float64         `json:"confidence"`
	Details        FeedbackDetails `json:"details"`
	Impact         ModelImpact     `json:"impact"`
	Processed      bool            `json:"processed"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Positive reports whether the entry rates the decision favorably.
func (f FeedbackEntry) Positive() bool {
	return f.Rating >= 4
}

// Negative reports whether the entry rates the decision unfavorably.
func (f FeedbackEntry) Negative() bool {
	return f.Rating <= 2
}

// InsightType classifies a derived learning finding.
type InsightType string

const (
	InsightPattern     InsightType = "pattern"
	InsightCorrelation InsightType = "correlation"
	InsightImprovement InsightType = "improvement"
	InsightRisk        InsightType = "risk"
)

// LearningInsight is a derived, human-readable finding. Append-only.
type LearningInsight struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organization_id"`
	Type           InsightType `json:"type"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Confidence     float64     `json:"confidence"`
	EvidenceCount  int         `json:"evidence_count"`
	ImpactScore    float64     `json:"impact_score"`
	Recommended    []string    `json:"recommended_actions,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// KnowledgePattern is an aggregated signal accumulated across feedback
// entries, keyed by (organization, pattern).
type KnowledgePattern struct {
	OrganizationID string    `json:"organization_id"`
	Pattern        string    `json:"pattern"`
	Count          int       `json:"count"`
	Confidence     float64   `json:"confidence"`
	LastSeen       time.Time `json:"last_seen"`
}

// ModelPerformance is a point-in-time performance snapshot for one
// downstream predictive model.
type ModelPerformance struct {
	OrganizationID string    `json:"organization_id"`
	Model          ModelType `json:"model"`
	WindowDays     int       `json:"window_days"`
	Accuracy       float64   `json:"accuracy"`
	AverageRating  float64   `json:"average_rating"`
	Trend          Trend     `json:"trend"`
	SampleSize     int       `json:"sample_size"`
	ComputedAt     time.Time `json:"computed_at"`
}

// RetrainingTask asks an external scheduler to retrain one model.
type RetrainingTask struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id"`
	Model          ModelType    `json:"model"`
	Reason         string       `json:"reason"`
	Priority       TaskPriority `json:"priority"`
	CreatedAt      time.Time    `json:"created_at"`
}
