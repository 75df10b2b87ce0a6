package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	arbitrum "nostr/arbitrum_chain"
	"nostr/config"
	"nostr/miner"
	noss "nostr/noss_chain"
)

var (
	envFile       string
	difficulty    int
	mineTimeout   time.Duration
	maxIterations int
)

var rootCmd = &cobra.Command{
	Use:           "noss-miner",
	Short:         "NIP-13 proof-of-work miner for noss mint events",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMiner,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Mine and publish noss mint events",
	RunE:  runMiner,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load")
	rootCmd.PersistentFlags().IntVarP(&difficulty, "difficulty", "d", -1, "target difficulty in leading zero bits (overrides env)")
	rootCmd.PersistentFlags().DurationVar(&mineTimeout, "timeout", 0, "time budget of one mining run (overrides env)")
	rootCmd.PersistentFlags().IntVar(&maxIterations, "max-iterations", 0, "iteration budget of one mining run (overrides env)")

	rootCmd.AddCommand(runCmd, mineCmd, verifyCmd)
}

// loadConfig reads the env configuration and applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if difficulty >= 0 {
		cfg.Difficulty = difficulty
	}
	if mineTimeout > 0 {
		cfg.MineTimeout = mineTimeout
	}
	if maxIterations > 0 {
		cfg.MaxIterations = maxIterations
	}
	logrus.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func runMiner(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()

	arb, err := arbitrum.NewArbitrumChain(ctx, cfg.ArbRpcUrl)
	if err != nil {
		return err
	}
	nossChain := noss.NewNossChain(cfg.ReportURL)
	m := miner.NewMiner(arb, nossChain, miner.NewHTTPPublisher(cfg.PostEventURL, nil), miner.Options{
		PublicKey:     cfg.PublicKey,
		SecretKey:     cfg.SecretKey,
		Difficulty:    cfg.Difficulty,
		Timeout:       cfg.MineTimeout,
		MaxIterations: cfg.MaxIterations,
		Workers:       cfg.NumberOfWorkers,
		RelayURL:      cfg.RelayURL,
		Registerer:    prometheus.DefaultRegisterer,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return arb.ListenNewHeader(ctx) })
	g.Go(func() error {
		return nossChain.ListenEvent(ctx, func(eventID string) { m.OnNossEvent(eventID) })
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return serveMetrics(ctx, cfg.MetricsAddr) })
	}
	g.Go(func() error {
		if err := arb.WaitReady(ctx); err != nil {
			return err
		}
		if err := nossChain.WaitReady(ctx); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"pubkey":     cfg.PublicKey,
			"difficulty": cfg.Difficulty,
			"workers":    cfg.NumberOfWorkers,
		}).Info("start mining")
		return m.Mine(ctx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	logrus.Infof("serving metrics on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return ctx.Err()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
