package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AutoApprovalLimits bounds what the engine may approve without a human
// inside one rolling window.
type AutoApprovalLimits struct {
	MaxActions    int             `json:"max_actions"`
	MaxValue      decimal.Decimal `json:"max_value"`
	WindowMinutes int             `json:"window_minutes"`
}

// ApprovalRules lists the conditions that force a human into the loop.
// Any single match is sufficient.
type ApprovalRules struct {
	ActionTypes      []string        `json:"action_types"`
	RiskLevels       []RiskLevel     `json:"risk_levels"`
	ValueThreshold   decimal.Decimal `json:"value_threshold"`
	CustomerSegments []string        `json:"customer_segments"`
}

// EscalationTimeouts holds per-priority expiry windows, in minutes.
type EscalationTimeouts struct {
	HighPriorityMinutes   int `json:"high_priority_minutes"`
	MediumPriorityMinutes int `json:"medium_priority_minutes"`
	LowPriorityMinutes    int `json:"low_priority_minutes"`
}

// ComplianceSettings controls audit-trail behavior.
type ComplianceSettings struct {
	AuditTrail    bool `json:"audit_trail"`
	RetentionDays int  `json:"retention_days"`
}

// GovernanceConfig is the per-organization governance policy. Mutated
// only through the engine's validated update path.
type GovernanceConfig struct {
	OrganizationID      string             `json:"organization_id"`
	Mode                OperatingMode      `json:"mode"`
	AutoApproval        AutoApprovalLimits `json:"auto_approval"`
	RequireApproval     ApprovalRules      `json:"require_approval"`
	Escalation          EscalationTimeouts `json:"escalation"`
	EscalationChain     []string           `json:"escalation_chain,omitempty"`
	ConfidenceThreshold float64            `json:"confidence_threshold"`
	Compliance          ComplianceSettings `json:"compliance"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// DefaultGovernanceConfig returns the conservative policy used when an
// organization has never configured governance: queue mode, human
// approval for high-impact actions.
func DefaultGovernanceConfig(organizationID string) GovernanceConfig {
	return GovernanceConfig{
		OrganizationID: organizationID,
		Mode:           ModeQueue,
		AutoApproval: AutoApprovalLimits{
			MaxActions:    10,
			MaxValue:      decimal.NewFromInt(100),
			WindowMinutes: 60,
		},
		RequireApproval: ApprovalRules{
			ActionTypes:    []string{"PROCESS_PAYMENT", "ISSUE_REFUND", "DELETE_RECORD"},
			RiskLevels:     []RiskLevel{RiskHigh, RiskCritical},
			ValueThreshold: decimal.NewFromInt(500),
		},
		Escalation: EscalationTimeouts{
			HighPriorityMinutes:   30,
			MediumPriorityMinutes: 120,
			LowPriorityMinutes:    480,
		},
		ConfidenceThreshold: 0.85,
		Compliance: ComplianceSettings{
			AuditTrail:    true,
			RetentionDays: 90,
		},
	}
}

// GovernanceDecision is the lifecycle record for one evaluated plan.
// Created once, mutated exactly once by a human decision (or marked
// expired). Terminal states: approved, rejected, expired.
type GovernanceDecision struct {
	ID             string           `json:"id"`
	ActionPlanID   string           `json:"action_plan_id"`
	OrganizationID string           `json:"organization_id"`
	ContactID      string           `json:"contact_id,omitempty"`
	Type           DecisionType     `json:"type"`
	RiskLevel      RiskLevel        `json:"risk_level"`
	Confidence     ConfidenceLevel  `json:"confidence"`
	Reasoning      string           `json:"reasoning"`
	Recommendation AIRecommendation `json:"recommendation"`
	Assessment     RiskAssessment   `json:"assessment"`
	Status         DecisionStatus   `json:"status"`
	DecisionMaker  string           `json:"decision_maker"`
	HumanDecision  string           `json:"human_decision,omitempty"`
	DecidedBy      string           `json:"decided_by,omitempty"`
	Justification  string           `json:"justification,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	DecidedAt      *time.Time       `json:"decided_at,omitempty"`
	ExpiresAt      time.Time        `json:"expires_at"`
}
