package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/governance"
)

var sweepInterval time.Duration

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationVar(&sweepInterval, "sweep-interval", time.Minute, "How often to expire stale decisions")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the background maintenance loop",
	Long:  "Periodically expires decisions whose approval window has passed and hot-reloads\nthe parameter file on change. Runs until interrupted.",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	v, err := newEnv()
	if err != nil {
		return err
	}
	defer v.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := governance.NewSweeper(v.engine, sweepInterval, log)

	// Hot reload is best-effort: without a params file the defaults stay
	// active and there is nothing to watch.
	if paramsPath != "" {
		watcher, err := config.NewWatcher(paramsPath, func(p *config.Params, hash string) {
			log.Info("new parameters active on next start", zap.String("hash", hash))
		}, log)
		if err != nil {
			return err
		}
		go watcher.Run(ctx)
	}

	fmt.Printf("steward maintenance loop running (sweep every %s), Ctrl-C to stop\n", sweepInterval)
	return sweeper.Run(ctx)
}
