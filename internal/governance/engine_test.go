package governance

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stewardhq/steward/internal/clock"
	"github.com/stewardhq/steward/internal/model"
	"github.com/stewardhq/steward/internal/publish"
	"github.com/stewardhq/steward/internal/store"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *store.Memory, *publish.Recorder, *clock.Fake) {
	t.Helper()
	st := store.NewMemory()
	rec := &publish.Recorder{}
	clk := clock.NewFake(t0)
	e := New(Options{Store: st, Publisher: rec, Clock: clk})
	return e, st, rec, clk
}

func benignPlan(id string) *model.ActionPlan {
	return &model.ActionPlan{
		ID:             id,
		OrganizationID: "org-1",
		Actions:        []model.Action{{Type: "ADD_TAG"}},
	}
}

func setMode(t *testing.T, e *Engine, mode model.OperatingMode, rules model.ApprovalRules) {
	t.Helper()
	cfg := model.DefaultGovernanceConfig("org-1")
	cfg.Mode = mode
	cfg.RequireApproval = rules
	if err := e.UpdateConfig(cfg); err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}
}

func TestDefaultConfigQueuesDecision(t *testing.T) {
	e, st, rec, _ := newTestEngine(t)

	d, err := e.EvaluateActionPlan(benignPlan("plan-1"))
	if err != nil {
		t.Fatalf("EvaluateActionPlan failed: %v", err)
	}
	if d.Type != model.DecisionDefer {
		t.Errorf("expected defer in queue mode, got %s", d.Type)
	}
	if d.Status != model.StatusPending {
		t.Errorf("expected pending status, got %s", d.Status)
	}
	if d.DecisionMaker != "system" {
		t.Errorf("expected system decision maker, got %s", d.DecisionMaker)
	}
	// Low risk maps to the low-priority expiry tier (480 minutes).
	if want := d.CreatedAt.Add(480 * time.Minute); !d.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %s, got %s", want, d.ExpiresAt)
	}
	if !strings.Contains(d.Reasoning, "mode=queue") {
		t.Errorf("expected reasoning to name the mode, got %q", d.Reasoning)
	}

	if n := rec.CountByType(EventApprovalRequired); n != 1 {
		t.Errorf("expected 1 approval-required event, got %d", n)
	}
	if n := rec.CountByType(EventDecisionMade); n != 1 {
		t.Errorf("expected 1 decision-made event, got %d", n)
	}

	// A non-terminal decision must not record a trust event yet.
	events, _ := st.EventsSince("org-1", time.Time{})
	if len(events) != 0 {
		t.Errorf("expected no trust events for a pending decision, got %d", len(events))
	}

	stored, err := st.Decision(d.ID)
	if err != nil {
		t.Fatalf("decision not persisted: %v", err)
	}
	if stored.Status != model.StatusPending {
		t.Errorf("expected persisted pending, got %s", stored.Status)
	}
}

func TestEmergencyStopRejectsEverything(t *testing.T) {
	e, st, rec, _ := newTestEngine(t)
	setMode(t, e, model.ModeEmergencyStop, model.ApprovalRules{})

	d, err := e.EvaluateActionPlan(benignPlan("plan-1"))
	if err != nil {
		t.Fatalf("EvaluateActionPlan failed: %v", err)
	}
	if d.Type != model.DecisionReject || d.Status != model.StatusRejected {
		t.Errorf("expected reject/rejected, got %s/%s", d.Type, d.Status)
	}
	if d.DecidedAt == nil {
		t.Error("expected immediate decision timestamp")
	}
	if n := rec.CountByType(EventApprovalRequired); n != 0 {
		t.Errorf("expected no approval-required event, got %d", n)
	}

	// Terminal decisions close the trust cycle immediately.
	events, _ := st.EventsSince("org-1", time.Time{})
	if len(events) != 1 {
		t.Errorf("expected 1 trust event, got %d", len(events))
	}
}

func TestAutonomousAutoApproves(t *testing.T) {
	e, st, rec, _ := newTestEngine(t)
	setMode(t, e, model.ModeAutonomous, model.ApprovalRules{})

	d, err := e.EvaluateActionPlan(benignPlan("plan-1"))
	if err != nil {
		t.Fatalf("EvaluateActionPlan failed: %v", err)
	}
	if d.Type != model.DecisionAutoApprove || d.Status != model.StatusApproved {
		t.Errorf("expected auto_approve/approved, got %s/%s", d.Type, d.Status)
	}
	if d.DecisionMaker != "ai" {
		t.Errorf("expected ai decision maker, got %s", d.DecisionMaker)
	}
	if n := rec.CountByType(EventApprovalRequired); n != 0 {
		t.Errorf("expected no approval-required event, got %d", n)
	}

	events, _ := st.EventsSince("org-1", time.Time{})
	if len(events) != 1 {
		t.Errorf("expected 1 trust event, got %d", len(events))
	}
}

func TestAutonomousForcedApprovalStillQueues(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	cfg := model.DefaultGovernanceConfig("org-1")
	cfg.Mode = model.ModeAutonomous
	if err := e.UpdateConfig(cfg); err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}

	plan := &model.ActionPlan{
		ID:             "plan-1",
		OrganizationID: "org-1",
		Actions:        []model.Action{{Type: "PROCESS_PAYMENT"}},
	}
	d, err := e.EvaluateActionPlan(plan)
	if err != nil {
		t.Fatalf("EvaluateActionPlan failed: %v", err)
	}
	if d.Type != model.DecisionDefer || d.Status != model.StatusPending {
		t.Errorf("expected forced-approval action to queue, got %s/%s", d.Type, d.Status)
	}
}

func TestValueThresholdForcesHuman(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	cfg := model.DefaultGovernanceConfig("org-1")
	cfg.Mode = model.ModeAutonomous
	cfg.RequireApproval = model.ApprovalRules{ValueThreshold: cfg.RequireApproval.ValueThreshold}
	if err := e.UpdateConfig(cfg); err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}

	plan := benignPlan("plan-1")
	plan.RawMetadata = map[string]any{"estimated_value": 600}
	d, err := e.EvaluateActionPlan(plan)
	if err != nil {
		t.Fatalf("EvaluateActionPlan failed: %v", err)
	}
	if d.Status != model.StatusPending {
		t.Errorf("expected value above threshold to queue, got %s", d.Status)
	}

	cheap := benignPlan("plan-2")
	cheap.RawMetadata = map[string]any{"estimated_value": 100}
	d, err = e.EvaluateActionPlan(cheap)
	if err != nil {
		t.Fatalf("EvaluateActionPlan failed: %v", err)
	}
	if d.Status != model.StatusApproved {
		t.Errorf("expected value below threshold to auto-approve, got %s", d.Status)
	}
}

func TestSemiAutonomousEscalates(t *testing.T) {
	e, _, rec, _ := newTestEngine(t)
	setMode(t, e, model.ModeSemiAutonomous, model.ApprovalRules{})

	d, err := e.EvaluateActionPlan(benignPlan("plan-1"))
	if err != nil {
		t.Fatalf("EvaluateActionPlan failed: %v", err)
	}
	if d.Type != model.DecisionEscalate || d.Status != model.StatusEscalated {
		t.Errorf("expected escalate/escalated, got %s/%s", d.Type, d.Status)
	}
	// Escalated decisions still await a human.
	if n := rec.CountByType(EventApprovalRequired); n != 1 {
		t.Errorf("expected 1 approval-required event, got %d", n)
	}
}

func TestExpiryWindowFollowsRiskTier(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	low, err := e.EvaluateActionPlan(benignPlan("plan-1"))
	if err != nil {
		t.Fatalf("EvaluateActionPlan failed: %v", err)
	}
	if got := low.ExpiresAt.Sub(low.CreatedAt); got != 480*time.Minute {
		t.Errorf("expected 480m expiry for low risk, got %s", got)
	}

	medium := &model.ActionPlan{
		ID:             "plan-2",
		OrganizationID: "org-1",
		Actions:        []model.Action{{Type: "PROCESS_PAYMENT"}},
	}
	d, err := e.EvaluateActionPlan(medium)
	if err != nil {
		t.Fatalf("EvaluateActionPlan failed: %v", err)
	}
	if got := d.ExpiresAt.Sub(d.CreatedAt); got != 120*time.Minute {
		t.Errorf("expected 120m expiry for medium risk, got %s", got)
	}
}

func TestProcessHumanDecisionApprove(t *testing.T) {
	e, st, rec, _ := newTestEngine(t)
	d, err := e.EvaluateActionPlan(benignPlan("plan-1"))
	if err != nil {
		t.Fatalf("EvaluateActionPlan failed: %v", err)
	}

	updated, err := e.ProcessHumanDecision(d.ID, "approve", "user-9", "looks fine")
	if err != nil {
		t.Fatalf("ProcessHumanDecision failed: %v", err)
	}
	if updated.Status != model.StatusApproved {
		t.Errorf("expected approved, got %s", updated.Status)
	}
	if updated.DecisionMaker != "human" || updated.DecidedBy != "user-9" {
		t.Errorf("expected human/user-9, got %s/%s", updated.DecisionMaker, updated.DecidedBy)
	}
	if updated.DecidedAt == nil {
		t.Error("expected decided-at timestamp")
	}

	if n := rec.CountByType(EventApproved); n != 1 {
		t.Errorf("expected exactly 1 approved event, got %d", n)
	}

	events, _ := st.EventsSince("org-1", time.Time{})
	if len(events) != 1 {
		t.Errorf("expected 1 trust event after human approval, got %d", len(events))
	}

	stored, _ := st.Decision(d.ID)
	if stored.Status != model.StatusApproved {
		t.Errorf("expected persisted approved, got %s", stored.Status)
	}
}

func TestSecondHumanDecisionFails(t *testing.T) {
	e, _, rec, _ := newTestEngine(t)
	d, _ := e.EvaluateActionPlan(benignPlan("plan-1"))

	if _, err := e.ProcessHumanDecision(d.ID, "approve", "user-9", ""); err != nil {
		t.Fatalf("first decision failed: %v", err)
	}
	_, err := e.ProcessHumanDecision(d.ID, "reject", "user-9", "")
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}
	if n := rec.CountByType(EventApproved); n != 1 {
		t.Errorf("expected exactly 1 approved event, got %d", n)
	}
	if n := rec.CountByType(EventRejected); n != 0 {
		t.Errorf("expected no rejected event, got %d", n)
	}
}

func TestRejectPublishesRejected(t *testing.T) {
	e, _, rec, _ := newTestEngine(t)
	d, _ := e.EvaluateActionPlan(benignPlan("plan-1"))

	updated, err := e.ProcessHumanDecision(d.ID, "reject", "user-9", "too risky")
	if err != nil {
		t.Fatalf("ProcessHumanDecision failed: %v", err)
	}
	if updated.Status != model.StatusRejected {
		t.Errorf("expected rejected, got %s", updated.Status)
	}
	if updated.Justification != "too risky" {
		t.Errorf("expected justification recorded, got %q", updated.Justification)
	}
	if n := rec.CountByType(EventRejected); n != 1 {
		t.Errorf("expected 1 rejected event, got %d", n)
	}
}

func TestModifyCountsAsApproval(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	d, _ := e.EvaluateActionPlan(benignPlan("plan-1"))

	updated, err := e.ProcessHumanDecision(d.ID, "modify", "user-9", "send tomorrow instead")
	if err != nil {
		t.Fatalf("ProcessHumanDecision failed: %v", err)
	}
	if updated.Status != model.StatusApproved {
		t.Errorf("expected modify to approve, got %s", updated.Status)
	}
	if updated.HumanDecision != "modify" {
		t.Errorf("expected human decision modify, got %s", updated.HumanDecision)
	}
}

func TestUnknownVerdictRejected(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	d, _ := e.EvaluateActionPlan(benignPlan("plan-1"))

	if _, err := e.ProcessHumanDecision(d.ID, "maybe", "user-9", ""); err == nil {
		t.Fatal("expected error for unknown verdict")
	}
	stored, _ := st.Decision(d.ID)
	if stored.Status != model.StatusPending {
		t.Errorf("expected decision unchanged, got %s", stored.Status)
	}
}

func TestExpiredDecisionCannotBeApproved(t *testing.T) {
	e, st, rec, clk := newTestEngine(t)
	d, _ := e.EvaluateActionPlan(benignPlan("plan-1"))

	clk.Advance(481 * time.Minute)

	_, err := e.ProcessHumanDecision(d.ID, "approve", "user-9", "")
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}

	stored, _ := st.Decision(d.ID)
	if stored.Status != model.StatusExpired {
		t.Errorf("expected stored status expired, got %s", stored.Status)
	}
	if n := rec.CountByType(EventExpired); n != 1 {
		t.Errorf("expected 1 expired event, got %d", n)
	}
}

func TestProcessUnknownDecision(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	_, err := e.ProcessHumanDecision("no-such-decision", "approve", "user-9", "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExpireStaleSweep(t *testing.T) {
	e, st, _, clk := newTestEngine(t)
	e.EvaluateActionPlan(benignPlan("plan-1"))
	e.EvaluateActionPlan(benignPlan("plan-2"))

	clk.Advance(481 * time.Minute)

	n, err := e.ExpireStale("")
	if err != nil {
		t.Fatalf("ExpireStale failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 expired decisions, got %d", n)
	}

	awaiting, _ := st.AwaitingDecisions("")
	if len(awaiting) != 0 {
		t.Errorf("expected no awaiting decisions, got %d", len(awaiting))
	}
}

func TestExpireStaleKeepsFreshDecisions(t *testing.T) {
	e, _, _, clk := newTestEngine(t)
	e.EvaluateActionPlan(benignPlan("plan-1"))

	clk.Advance(time.Minute)

	n, err := e.ExpireStale("")
	if err != nil {
		t.Fatalf("ExpireStale failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no expiries, got %d", n)
	}
}
