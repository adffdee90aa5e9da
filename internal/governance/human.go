package governance

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stewardhq/steward/internal/model"
	"github.com/stewardhq/steward/internal/store"
)

// ProcessHumanDecision applies a human verdict to an awaiting decision.
// Fails with store.ErrNotFound for unknown ids, ErrAlreadyDecided for
// finalized records, and ErrExpired when the expiry time passed (the
// record is transitioned to expired as part of the failure).
func (e *Engine) ProcessHumanDecision(decisionID, humanDecision, actorID, justification string) (model.GovernanceDecision, error) {
	d, err := e.store.Decision(decisionID)
	if err != nil {
		if err == store.ErrNotFound {
			return model.GovernanceDecision{}, fmt.Errorf("decision %q: %w", decisionID, store.ErrNotFound)
		}
		return model.GovernanceDecision{}, fmt.Errorf("read decision: %w", err)
	}

	if !d.Status.AwaitingHuman() {
		return model.GovernanceDecision{}, fmt.Errorf("decision %q is %s: %w", decisionID, d.Status, ErrAlreadyDecided)
	}

	now := e.clock.Now()
	if now.After(d.ExpiresAt) {
		e.expire(d)
		return model.GovernanceDecision{}, fmt.Errorf("decision %q expired at %s: %w", decisionID, d.ExpiresAt.Format("2006-01-02T15:04:05Z"), ErrExpired)
	}

	from := d.Status
	switch humanDecision {
	case "approve":
		d.Status = model.StatusApproved
	case "reject":
		d.Status = model.StatusRejected
	case "modify":
		// Modifications are accepted as approval; the requested changes
		// are carried in the justification, not applied to the plan.
		// TODO: apply plan modifications once the executor accepts
		// patched plans.
		d.Status = model.StatusApproved
	default:
		return model.GovernanceDecision{}, fmt.Errorf("unknown human decision %q (want approve, reject, or modify)", humanDecision)
	}

	d.HumanDecision = humanDecision
	d.DecidedBy = actorID
	d.Justification = justification
	d.DecisionMaker = "human"
	d.DecidedAt = &now

	if err := e.store.UpdateDecision(d, from); err != nil {
		if err == store.ErrStatusConflict {
			return model.GovernanceDecision{}, fmt.Errorf("decision %q: %w", decisionID, ErrAlreadyDecided)
		}
		return model.GovernanceDecision{}, fmt.Errorf("update decision: %w", err)
	}

	trustScore, err := e.trust.Score(d.OrganizationID)
	if err != nil {
		return model.GovernanceDecision{}, err
	}
	if err := e.recordCycle(d, trustScore); err != nil {
		return model.GovernanceDecision{}, err
	}

	event := EventApproved
	if d.Status == model.StatusRejected {
		event = EventRejected
	}
	e.publisher.Publish(event, decisionPayload(d))

	cfg, cfgErr := e.Config(d.OrganizationID)
	if cfgErr == nil {
		e.audit(cfg, d, "human_decision", actorID)
	}

	e.log.Info("human decision processed",
		zap.String("decision_id", d.ID),
		zap.String("status", string(d.Status)),
		zap.String("actor", actorID),
	)
	return d, nil
}

// expire transitions an awaiting decision to expired. Best-effort: a
// concurrent transition winning the race is fine, the record is
// terminal either way.
func (e *Engine) expire(d model.GovernanceDecision) {
	from := d.Status
	d.Status = model.StatusExpired
	now := e.clock.Now()
	d.DecidedAt = &now

	if err := e.store.UpdateDecision(d, from); err != nil {
		if err != store.ErrStatusConflict {
			e.log.Warn("expire decision failed", zap.String("decision_id", d.ID), zap.Error(err))
		}
		return
	}

	e.publisher.Publish(EventExpired, decisionPayload(d))
	if cfg, err := e.Config(d.OrganizationID); err == nil {
		e.audit(cfg, d, "expired", "")
	}
}
