// Package governance combines risk assessment, trust scoring, and
// per-organization policy into governance decisions, and owns the
// decision lifecycle from creation through human override or expiry.
package governance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/stewardhq/steward/internal/audit"
	"github.com/stewardhq/steward/internal/clock"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/model"
	"github.com/stewardhq/steward/internal/publish"
	"github.com/stewardhq/steward/internal/risk"
	"github.com/stewardhq/steward/internal/store"
	"github.com/stewardhq/steward/internal/trust"
)

// Published event types.
const (
	EventDecisionMade     = "governance-decision-made"
	EventApprovalRequired = "governance-approval-required"
	EventApproved         = "governance-approved"
	EventRejected         = "governance-rejected"
	EventExpired          = "governance-decision-expired"
)

// Options configures an Engine. Store is required; everything else has
// a sensible default.
type Options struct {
	Store      store.Store
	Assessor   *risk.Assessor
	Trust      *trust.Scorer
	Publisher  publish.Publisher
	Clock      clock.Clock
	Params     *config.Params
	ParamsHash string
	// AuditLog, when set and the organization's compliance settings
	// enable an audit trail, records every decision transition.
	AuditLog *audit.Log
	Logger   *zap.Logger
}

// Engine is an explicitly constructed service instance: it holds its
// own caches and collaborators, so independent engines can coexist in
// one process.
type Engine struct {
	store       store.Store
	assessor    *risk.Assessor
	trust       *trust.Scorer
	publisher   publish.Publisher
	clock       clock.Clock
	params      *config.Params
	paramsHash  string
	auditLog    *audit.Log
	configCache *gocache.Cache
	log         *zap.Logger
}

// New creates an Engine from opts.
func New(opts Options) *Engine {
	if opts.Store == nil {
		panic("governance: Options.Store is required")
	}
	if opts.Params == nil {
		opts.Params = config.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Publisher == nil {
		opts.Publisher = publish.Nop{}
	}
	if opts.Assessor == nil {
		opts.Assessor = risk.NewAssessor(opts.Params.Risk)
	}
	if opts.Trust == nil {
		opts.Trust = trust.NewScorer(opts.Store, opts.Clock, opts.Params.Trust, opts.Logger)
	}

	ttl := time.Duration(opts.Params.ConfigCacheTTLMinutes) * time.Minute
	return &Engine{
		store:       opts.Store,
		assessor:    opts.Assessor,
		trust:       opts.Trust,
		publisher:   opts.Publisher,
		clock:       opts.Clock,
		params:      opts.Params,
		paramsHash:  opts.ParamsHash,
		auditLog:    opts.AuditLog,
		configCache: gocache.New(ttl, 2*ttl),
		log:         opts.Logger,
	}
}

// Trust exposes the engine's trust scorer, shared with the feedback loop.
func (e *Engine) Trust() *trust.Scorer { return e.trust }

// EvaluateActionPlan assesses a plan and produces its governance
// decision. Any architecturally valid plan yields a decision object;
// only infrastructural failures (store read/write) return an error.
func (e *Engine) EvaluateActionPlan(plan *model.ActionPlan) (model.GovernanceDecision, error) {
	cfg, err := e.Config(plan.OrganizationID)
	if err != nil {
		return model.GovernanceDecision{}, err
	}

	assessment := e.assessor.Assess(plan)
	trustScore, err := e.trust.Score(plan.OrganizationID)
	if err != nil {
		return model.GovernanceDecision{}, err
	}

	meta := plan.Metadata()
	confidence := model.ConfidenceLevelForScore(meta.Confidence)
	recommendation := recommend(assessment.OverallLevel, meta.Confidence)
	needsHuman := requiresHumanApproval(cfg, plan, assessment.OverallLevel, meta)

	now := e.clock.Now()
	d := model.GovernanceDecision{
		ID:             uuid.NewString(),
		ActionPlanID:   plan.ID,
		OrganizationID: plan.OrganizationID,
		ContactID:      plan.ContactID,
		RiskLevel:      assessment.OverallLevel,
		Confidence:     confidence,
		Recommendation: recommendation,
		Assessment:     assessment,
		DecisionMaker:  "system",
		CreatedAt:      now,
		ExpiresAt:      now.Add(expiryWindow(cfg, assessment.OverallLevel)),
	}

	// Routing priority: emergency stop, autonomous auto-approval,
	// human queue, escalation. The order must not change.
	switch {
	case cfg.Mode == model.ModeEmergencyStop:
		d.Type = model.DecisionReject
		d.Status = model.StatusRejected
		d.DecidedAt = &now

	case cfg.Mode == model.ModeAutonomous && !needsHuman && recommendation == model.RecommendApprove:
		d.Type = model.DecisionAutoApprove
		d.Status = model.StatusApproved
		d.DecisionMaker = "ai"
		d.DecidedAt = &now

	case needsHuman || cfg.Mode == model.ModeQueue:
		d.Type = model.DecisionDefer
		d.Status = model.StatusPending

	default:
		d.Type = model.DecisionEscalate
		d.Status = model.StatusEscalated
	}

	d.Reasoning = fmt.Sprintf("mode=%s risk=%s trust=%.2f trust_confidence=%.2f requires_human=%t recommendation=%s",
		cfg.Mode, assessment.OverallLevel, trustScore.Overall, trustScore.Confidence, needsHuman, recommendation)

	if err := e.store.SaveDecision(d); err != nil {
		return model.GovernanceDecision{}, fmt.Errorf("save decision: %w", err)
	}

	// Immediately terminal decisions complete the cycle now; deferred
	// ones complete it when the human acts.
	if d.Status.Terminal() {
		if err := e.recordCycle(d, trustScore); err != nil {
			return model.GovernanceDecision{}, err
		}
	}

	if d.Status.AwaitingHuman() {
		e.publisher.Publish(EventApprovalRequired, map[string]any{
			"decision_id":      d.ID,
			"organization_id":  d.OrganizationID,
			"action_plan_id":   d.ActionPlanID,
			"risk_level":       string(d.RiskLevel),
			"expires_at":       d.ExpiresAt,
			"escalation_chain": cfg.EscalationChain,
		})
	}
	e.publisher.Publish(EventDecisionMade, decisionPayload(d))

	e.audit(cfg, d, "decision_made", "")
	e.log.Info("action plan evaluated",
		zap.String("decision_id", d.ID),
		zap.String("organization_id", d.OrganizationID),
		zap.String("type", string(d.Type)),
		zap.String("status", string(d.Status)),
		zap.String("risk_level", string(d.RiskLevel)),
	)

	return d, nil
}

// recordCycle appends the trust event that closes one decision cycle
// and synchronously invalidates the organization's cached score.
func (e *Engine) recordCycle(d model.GovernanceDecision, trustScore model.TrustScore) error {
	ev := model.TrustEvent{
		OrganizationID: d.OrganizationID,
		ActionPlanID:   d.ActionPlanID,
		TrustLevel:     trustScore.Overall,
		Assessment:     d.Assessment,
		Decision:       d.Status,
		Timestamp:      e.clock.Now(),
	}
	if err := e.trust.RecordEvent(ev); err != nil {
		return fmt.Errorf("record decision cycle: %w", err)
	}
	return nil
}

// recommend derives the AI recommendation from risk and stated plan
// confidence.
func recommend(level model.RiskLevel, planConfidence float64) model.AIRecommendation {
	switch {
	case level == model.RiskCritical || level == model.RiskHigh:
		return model.RecommendReview
	case level == model.RiskMedium && planConfidence < 0.7:
		return model.RecommendReview
	default:
		return model.RecommendApprove
	}
}

// requiresHumanApproval checks the config's forced-approval rules. Any
// single match is sufficient.
func requiresHumanApproval(cfg model.GovernanceConfig, plan *model.ActionPlan, level model.RiskLevel, meta model.PlanMetadata) bool {
	for _, rl := range cfg.RequireApproval.RiskLevels {
		if rl == level {
			return true
		}
	}
	for _, action := range plan.Actions {
		for _, t := range cfg.RequireApproval.ActionTypes {
			if action.Type == t {
				return true
			}
		}
	}
	if !cfg.RequireApproval.ValueThreshold.IsZero() && meta.EstimatedValue.GreaterThan(cfg.RequireApproval.ValueThreshold) {
		return true
	}
	for _, seg := range cfg.RequireApproval.CustomerSegments {
		if seg == meta.CustomerSegment {
			return true
		}
	}
	return false
}

// expiryWindow maps the decision's risk level to the configured
// escalation timeout tier.
func expiryWindow(cfg model.GovernanceConfig, level model.RiskLevel) time.Duration {
	switch level {
	case model.RiskCritical, model.RiskHigh:
		return time.Duration(cfg.Escalation.HighPriorityMinutes) * time.Minute
	case model.RiskMedium:
		return time.Duration(cfg.Escalation.MediumPriorityMinutes) * time.Minute
	default:
		return time.Duration(cfg.Escalation.LowPriorityMinutes) * time.Minute
	}
}

func decisionPayload(d model.GovernanceDecision) map[string]any {
	return map[string]any{
		"decision_id":     d.ID,
		"organization_id": d.OrganizationID,
		"action_plan_id":  d.ActionPlanID,
		"type":            string(d.Type),
		"status":          string(d.Status),
		"risk_level":      string(d.RiskLevel),
		"decision_maker":  d.DecisionMaker,
	}
}

// audit writes a best-effort audit entry when the organization's
// compliance settings ask for a trail. Failures are logged, never
// propagated.
func (e *Engine) audit(cfg model.GovernanceConfig, d model.GovernanceDecision, event, actor string) {
	if e.auditLog == nil || !cfg.Compliance.AuditTrail {
		return
	}
	err := e.auditLog.Record(audit.Entry{
		DecisionID:     d.ID,
		OrganizationID: d.OrganizationID,
		ActionPlanID:   d.ActionPlanID,
		Event:          event,
		DecisionType:   string(d.Type),
		Status:         string(d.Status),
		RiskLevel:      string(d.RiskLevel),
		Reason:         d.Reasoning,
		Actor:          actor,
		ParamsHash:     e.paramsHash,
	})
	if err != nil {
		e.log.Warn("audit record failed", zap.String("decision_id", d.ID), zap.Error(err))
	}
}
