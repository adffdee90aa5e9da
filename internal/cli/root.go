// Package cli implements the steward command tree. Commands run
// against the embedded file store, so a single binary can evaluate
// plans, work the approval queue, and inspect learning state without a
// server process.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/audit"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/feedback"
	"github.com/stewardhq/steward/internal/governance"
	"github.com/stewardhq/steward/internal/store"
)

var (
	storeDir   string
	paramsPath string
)

var rootCmd = &cobra.Command{
	Use:   "steward",
	Short: "Governance layer for autonomous business decisions",
	Long:  "Assesses the risk of AI-proposed action plans, routes them by per-organization policy,\nqueues what needs a human, and learns from decision outcomes.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", store.DefaultDir(), "Store directory")
	rootCmd.PersistentFlags().StringVar(&paramsPath, "params", "", "Parameter file (default ~/.steward/params.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// defaultAuditPath is where the engine's audit trail lives.
func defaultAuditPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "steward-audit.jsonl")
	}
	return filepath.Join(home, ".steward", "audit.jsonl")
}

// env holds the wired collaborators one command invocation uses.
type env struct {
	store    store.Store
	params   *config.Params
	auditLog *audit.Log
	engine   *governance.Engine
}

// newEnv opens the file store and audit log and wires the engine.
func newEnv() (*env, error) {
	st, err := store.NewFile(storeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	params, hash, err := config.LoadWithHash(paramsPath)
	if err != nil {
		return nil, err
	}

	log, err := audit.Open(defaultAuditPath())
	if err != nil {
		return nil, err
	}

	e := governance.New(governance.Options{
		Store:      st,
		Params:     params,
		ParamsHash: hash,
		AuditLog:   log,
	})
	return &env{store: st, params: params, auditLog: log, engine: e}, nil
}

// loop builds the feedback loop sharing the engine's store and trust
// scorer.
func (v *env) loop() *feedback.Loop {
	return feedback.NewLoop(v.store, v.engine.Trust(), nil, nil, v.params, nil)
}

func (v *env) close() {
	v.auditLog.Close()
}
