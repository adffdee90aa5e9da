package governance

import (
	"fmt"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/stewardhq/steward/internal/model"
	"github.com/stewardhq/steward/internal/store"
)

// Config returns the organization's governance config, from cache when
// fresh. An organization that never configured governance gets the
// conservative default; store failures propagate.
func (e *Engine) Config(organizationID string) (model.GovernanceConfig, error) {
	if v, ok := e.configCache.Get(organizationID); ok {
		return v.(model.GovernanceConfig), nil
	}

	cfg, err := e.store.Config(organizationID)
	if err != nil {
		if err == store.ErrNotFound {
			cfg = model.DefaultGovernanceConfig(organizationID)
		} else {
			return model.GovernanceConfig{}, fmt.Errorf("read governance config: %w", err)
		}
	}

	e.configCache.Set(organizationID, cfg, gocache.DefaultExpiration)
	return cfg, nil
}

// UpdateConfig validates and persists a governance config, then
// invalidates both the config cache and the organization's trust score
// cache. On validation failure nothing is persisted and the previous
// config remains active.
func (e *Engine) UpdateConfig(cfg model.GovernanceConfig) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	cfg.UpdatedAt = e.clock.Now()
	if err := e.store.SaveConfig(cfg); err != nil {
		return fmt.Errorf("save governance config: %w", err)
	}

	e.configCache.Delete(cfg.OrganizationID)
	e.trust.Invalidate(cfg.OrganizationID)

	e.log.Info("governance config updated",
		zap.String("organization_id", cfg.OrganizationID),
		zap.String("mode", string(cfg.Mode)),
	)
	return nil
}

func validateConfig(cfg model.GovernanceConfig) error {
	if cfg.OrganizationID == "" {
		return fmt.Errorf("%w: organization id must be set", ErrInvalidConfig)
	}
	if !model.ValidMode(cfg.Mode) {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, cfg.Mode)
	}
	if cfg.AutoApproval.MaxActions < 0 {
		return fmt.Errorf("%w: auto-approval max actions must be non-negative, got %d", ErrInvalidConfig, cfg.AutoApproval.MaxActions)
	}
	if cfg.AutoApproval.MaxValue.IsNegative() {
		return fmt.Errorf("%w: auto-approval max value must be non-negative, got %s", ErrInvalidConfig, cfg.AutoApproval.MaxValue)
	}
	if cfg.AutoApproval.WindowMinutes < 0 {
		return fmt.Errorf("%w: auto-approval window must be non-negative, got %d", ErrInvalidConfig, cfg.AutoApproval.WindowMinutes)
	}
	if cfg.RequireApproval.ValueThreshold.IsNegative() {
		return fmt.Errorf("%w: approval value threshold must be non-negative, got %s", ErrInvalidConfig, cfg.RequireApproval.ValueThreshold)
	}
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold must be in [0,1], got %v", ErrInvalidConfig, cfg.ConfidenceThreshold)
	}
	return nil
}
