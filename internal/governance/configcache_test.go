package governance

import (
	"errors"
	"testing"

	"github.com/stewardhq/steward/internal/model"
)

func TestConfigDefaultsWhenUnset(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	cfg, err := e.Config("org-unset")
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if cfg.OrganizationID != "org-unset" {
		t.Errorf("expected default scoped to the organization, got %s", cfg.OrganizationID)
	}
	if cfg.Mode != model.ModeQueue {
		t.Errorf("expected conservative queue default, got %s", cfg.Mode)
	}
	if !cfg.Compliance.AuditTrail {
		t.Error("expected audit trail enabled by default")
	}
}

func TestUpdateConfigRefreshesCache(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	// Prime the cache with the default.
	if cfg, _ := e.Config("org-1"); cfg.Mode != model.ModeQueue {
		t.Fatalf("expected queue default")
	}

	cfg := model.DefaultGovernanceConfig("org-1")
	cfg.Mode = model.ModeAutonomous
	if err := e.UpdateConfig(cfg); err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}

	got, err := e.Config("org-1")
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if got.Mode != model.ModeAutonomous {
		t.Errorf("expected updated mode visible immediately, got %s", got.Mode)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("expected updated-at timestamp set")
	}
}

func TestUpdateConfigValidation(t *testing.T) {
	e, st, _, _ := newTestEngine(t)

	cases := []struct {
		name   string
		mutate func(*model.GovernanceConfig)
	}{
		{"empty org", func(c *model.GovernanceConfig) { c.OrganizationID = "" }},
		{"unknown mode", func(c *model.GovernanceConfig) { c.Mode = "turbo" }},
		{"negative max actions", func(c *model.GovernanceConfig) { c.AutoApproval.MaxActions = -1 }},
		{"confidence above one", func(c *model.GovernanceConfig) { c.ConfidenceThreshold = 1.5 }},
		{"negative confidence", func(c *model.GovernanceConfig) { c.ConfidenceThreshold = -0.1 }},
	}
	for _, c := range cases {
		cfg := model.DefaultGovernanceConfig("org-1")
		c.mutate(&cfg)
		err := e.UpdateConfig(cfg)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", c.name, err)
		}
	}

	// Nothing must have been persisted by the failed updates.
	if _, err := st.Config("org-1"); err == nil {
		t.Error("expected no persisted config after validation failures")
	}
}

func TestInvalidConfigKeepsPreviousActive(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	good := model.DefaultGovernanceConfig("org-1")
	good.Mode = model.ModeAutonomous
	if err := e.UpdateConfig(good); err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}

	bad := model.DefaultGovernanceConfig("org-1")
	bad.Mode = "turbo"
	if err := e.UpdateConfig(bad); err == nil {
		t.Fatal("expected validation failure")
	}

	got, _ := e.Config("org-1")
	if got.Mode != model.ModeAutonomous {
		t.Errorf("expected previous config to stay active, got %s", got.Mode)
	}
}
