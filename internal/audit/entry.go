package audit

// Entry is one line in the hash-chained JSONL audit log, recording a
// governance decision or a lifecycle transition on one. All fields are
// scalars (no map[string]any) to guarantee deterministic json.Marshal
// field order for reproducible hashing.
type Entry struct {
	Timestamp      string `json:"ts"`
	DecisionID     string `json:"decision_id"`
	OrganizationID string `json:"organization_id"`
	ActionPlanID   string `json:"action_plan_id"`
	Event          string `json:"event"`
	DecisionType   string `json:"decision_type"`
	Status         string `json:"status"`
	RiskLevel      string `json:"risk_level"`
	Reason         string `json:"reason"`
	Actor          string `json:"actor,omitempty"`
	ParamsHash     string `json:"params_hash,omitempty"`
	PrevHash       string `json:"prev_hash"`
}
