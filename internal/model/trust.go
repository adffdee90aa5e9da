package model

import "time"

// TrustEvent is the immutable record of one past governance decision
// outcome. Created once per completed decision cycle; never mutated.
type TrustEvent struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	ActionPlanID   string         `json:"action_plan_id"`
	TrustLevel     float64        `json:"trust_level"`
	Assessment     RiskAssessment `json:"assessment"`
	Decision       DecisionStatus `json:"decision"`
	Outcome        *Outcome       `json:"outcome,omitempty"`
	HumanFeedback  *HumanFeedback `json:"human_feedback,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// TrustScore is the derived trust aggregate for one organization over a
// trailing window of TrustEvents. Ephemeral: recomputed on demand and
// cached, never a source of truth.
type TrustScore struct {
	OrganizationID string                   `json:"organization_id"`
	Overall        float64                  `json:"overall"`
	Categories     map[RiskCategory]float64 `json:"categories"`
	Confidence     float64                  `json:"confidence"`
	ComputedAt     time.Time                `json:"computed_at"`
	SampleSize     int                      `json:"sample_size"`
}
