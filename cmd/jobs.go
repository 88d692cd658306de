package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-purchases/config"
)

var (
	workerMode bool
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Run creator payment account commands",
}

var accountsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-read capability flags of stale, not yet capable creator accounts from the processor",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"accounts_refresh",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.AccountRefreshInterval },
			func(s *services, ctx context.Context) error {
				return s.account.RunRefreshBatch(ctx)
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsRefreshCmd)

	rootCmd.PersistentFlags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *services, ctx context.Context) error,
) {
	cfg, svc, cleanup := mustCreateServices()
	defer cleanup()

	if workerMode {
		runWorker(name, intervalResolver(cfg), svc, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(svc, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	svc *services,
	fn func(s *services, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(svc, ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(svc, ctx) })
		}
	}
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
