package model

// RiskCategory classifies which business surface an action can damage.
type RiskCategory string

const (
	CategoryFinancial   RiskCategory = "financial"
	CategoryCustomer    RiskCategory = "customer"
	CategoryData        RiskCategory = "data"
	CategorySystem      RiskCategory = "system"
	CategoryReputation  RiskCategory = "reputation"
	CategoryCompliance  RiskCategory = "compliance"
	CategoryOperational RiskCategory = "operational"
)

// RiskCategories is the canonical, fixed category list. Code that
// aggregates per-category values iterates this slice so every category
// is handled explicitly.
var RiskCategories = []RiskCategory{
	CategoryFinancial,
	CategoryCustomer,
	CategoryData,
	CategorySystem,
	CategoryReputation,
	CategoryCompliance,
	CategoryOperational,
}

// RiskLevel is the four-level risk classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskRank maps risk levels to comparable integers.
var RiskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// RiskLevelForScore buckets an aggregate [0,1] score into a risk level.
// Boundaries: >=0.8 critical, >=0.6 high, >=0.3 medium, else low.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score >= 0.8:
		return RiskCritical
	case score >= 0.6:
		return RiskHigh
	case score >= 0.3:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Severity grades a single risk factor.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityWeight maps severity to its contribution in risk aggregation.
var SeverityWeight = map[Severity]float64{
	SeverityLow:      0.25,
	SeverityMedium:   0.5,
	SeverityHigh:     0.75,
	SeverityCritical: 1.0,
}

// Outcome is the observed real-world result of an executed decision.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomePartial Outcome = "partial"
)

// HumanFeedback labels whether a past decision turned out correct.
type HumanFeedback string

const (
	FeedbackCorrect          HumanFeedback = "correct"
	FeedbackIncorrect        HumanFeedback = "incorrect"
	FeedbackPartiallyCorrect HumanFeedback = "partially_correct"
)

// ConfidenceLevel is the five-level bucketing of a [0,1] confidence.
type ConfidenceLevel string

const (
	ConfidenceVeryLow  ConfidenceLevel = "very_low"
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
)

// ConfidenceLevelForScore buckets an AI confidence into a level.
func ConfidenceLevelForScore(score float64) ConfidenceLevel {
	switch {
	case score >= 0.9:
		return ConfidenceVeryHigh
	case score >= 0.7:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	case score >= 0.25:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// OperatingMode controls how autonomously an organization lets the
// engine act.
type OperatingMode string

const (
	ModeQueue          OperatingMode = "queue"
	ModeSemiAutonomous OperatingMode = "semi_autonomous"
	ModeAutonomous     OperatingMode = "autonomous"
	ModeEmergencyStop  OperatingMode = "emergency_stop"
)

// ValidMode reports whether m is one of the four enumerated modes.
func ValidMode(m OperatingMode) bool {
	switch m {
	case ModeQueue, ModeSemiAutonomous, ModeAutonomous, ModeEmergencyStop:
		return true
	}
	return false
}

// DecisionType is the governance verdict for one action plan.
type DecisionType string

const (
	DecisionApprove     DecisionType = "approve"
	DecisionReject      DecisionType = "reject"
	DecisionEscalate    DecisionType = "escalate"
	DecisionDefer       DecisionType = "defer"
	DecisionAutoApprove DecisionType = "auto_approve"
)

// DecisionStatus is the lifecycle state of a governance decision.
type DecisionStatus string

const (
	StatusPending   DecisionStatus = "pending"
	StatusApproved  DecisionStatus = "approved"
	StatusRejected  DecisionStatus = "rejected"
	StatusEscalated DecisionStatus = "escalated"
	StatusExpired   DecisionStatus = "expired"
)

// Terminal reports whether a status permits no further transitions.
func (s DecisionStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpired
}

// AwaitingHuman reports whether a decision in this status can still
// accept a human verdict.
func (s DecisionStatus) AwaitingHuman() bool {
	return s == StatusPending || s == StatusEscalated
}

// AIRecommendation is what the engine suggests before routing.
type AIRecommendation string

const (
	RecommendApprove AIRecommendation = "approve"
	RecommendReject  AIRecommendation = "reject"
	RecommendReview  AIRecommendation = "review"
)

// FeedbackSource identifies who produced a feedback signal.
type FeedbackSource string

const (
	SourceHuman    FeedbackSource = "human"
	SourceCustomer FeedbackSource = "customer"
	SourceSystem   FeedbackSource = "system"
	SourceOutcome  FeedbackSource = "outcome"
)

// FeedbackKind classifies what aspect of a decision the feedback rates.
type FeedbackKind string

const (
	KindDecisionQuality       FeedbackKind = "decision_quality"
	KindOutcomeSatisfaction   FeedbackKind = "outcome_satisfaction"
	KindCustomerResponse      FeedbackKind = "customer_response"
	KindBusinessImpact        FeedbackKind = "business_impact"
	KindRiskAccuracy          FeedbackKind = "risk_accuracy"
	KindTimingAppropriateness FeedbackKind = "timing_appropriateness"
)

// ModelType names a downstream predictive model that may need retraining.
type ModelType string

const (
	ModelChurn        ModelType = "churn"
	ModelCLV          ModelType = "clv"
	ModelSegmentation ModelType = "segmentation"
)

// ModelTypes is the canonical list of downstream models.
var ModelTypes = []ModelType{ModelChurn, ModelCLV, ModelSegmentation}

// Trend describes the direction of a model performance window.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// TaskPriority orders retraining tasks.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)
