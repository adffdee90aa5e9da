package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads parameters from a YAML file, layered over the defaults.
// Empty path falls back to ~/.steward/params.yaml. A missing file
// returns defaults; invalid YAML returns an error.
func Load(path string) (*Params, error) {
	p, _, err := LoadWithHash(path)
	return p, err
}

// LoadWithHash loads parameters and also returns a short content hash
// identifying the active parameter set (recorded in audit entries so a
// decision can be traced to the policy that produced it).
func LoadWithHash(path string) (*Params, string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), defaultHash(), nil
		}
		path = filepath.Join(home, ".steward", "params.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), defaultHash(), nil
		}
		return nil, "", fmt.Errorf("failed to read params file: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, "", fmt.Errorf("failed to parse params file: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, "", err
	}

	return p, hashBytes(data), nil
}

// Validate rejects parameter sets that would break score invariants.
func (p *Params) Validate() error {
	if p.Trust.WindowDays <= 0 {
		return fmt.Errorf("trust.window_days must be positive, got %d", p.Trust.WindowDays)
	}
	if p.Trust.SampleSaturation <= 0 {
		return fmt.Errorf("trust.sample_saturation must be positive, got %d", p.Trust.SampleSaturation)
	}
	if p.Trust.MinConfidence < 0 || p.Trust.MinConfidence > 1 {
		return fmt.Errorf("trust.min_confidence must be in [0,1], got %v", p.Trust.MinConfidence)
	}
	if sum := p.Trust.BlendDirect + p.Trust.BlendCategory; sum <= 0 {
		return fmt.Errorf("trust blend weights must sum above zero, got %v", sum)
	}
	if p.Retraining.WindowDays <= 0 {
		return fmt.Errorf("retraining.window_days must be positive, got %d", p.Retraining.WindowDays)
	}
	return nil
}

func defaultHash() string {
	data, _ := yaml.Marshal(Default())
	return hashBytes(data)
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:8])
}
