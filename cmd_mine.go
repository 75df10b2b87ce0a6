package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nostr/config"
	"nostr/pkg/hasher"
	"nostr/pow"
)

var (
	mineInput string
	mineSign  bool
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine an unsigned event template read as JSON",
	Long: "Reads an event template (kind, created_at, tags, content, pubkey) from --input or stdin,\n" +
		"adds a NIP-13 nonce tag reaching the target difficulty and prints the result.\n" +
		"Nothing is published.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		in, err := openInput(mineInput)
		if err != nil {
			return err
		}
		defer in.Close()

		secretKey := ""
		if mineSign {
			if cfg.SecretKey == "" {
				return config.ErrMissingSecretKey
			}
			secretKey = cfg.SecretKey
		}
		opts := pow.Options{
			TargetDifficulty: cfg.Difficulty,
			MaxIterations:    cfg.MaxIterations,
			Timeout:          mineTimeout,
		}
		return mineTemplate(cmd.Context(), in, cmd.OutOrStdout(), opts, secretKey)
	},
}

func init() {
	mineCmd.Flags().StringVarP(&mineInput, "input", "i", "-", "template file, - for stdin")
	mineCmd.Flags().BoolVar(&mineSign, "sign", false, "sign the mined event with sk")
}

type mineOutput struct {
	Event      json.RawMessage `json:"event"`
	Difficulty int             `json:"difficulty"`
	Iterations int             `json:"iterations"`
	TimeMs     int64           `json:"time_ms"`
}

// mineTemplate mines the template read from r and writes the result to w. The
// pubkey is replaced by the signing key's when secretKey is set.
func mineTemplate(ctx context.Context, r io.Reader, w io.Writer, opts pow.Options, secretKey string) error {
	var template nostr.Event
	if err := json.NewDecoder(r).Decode(&template); err != nil {
		return fmt.Errorf("decode template: %w", err)
	}
	if template.CreatedAt == 0 {
		template.CreatedAt = nostr.Now()
	}
	if secretKey != "" {
		pk, err := nostr.GetPublicKey(secretKey)
		if err != nil {
			return fmt.Errorf("derive pubkey: %w", err)
		}
		template.PubKey = pk
	}

	opts.Hash = hasher.ID
	opts.OnProgress = func(iterations, difficulty int) {
		logrus.WithFields(logrus.Fields{
			"iterations": iterations,
			"difficulty": difficulty,
		}).Info("best so far")
	}

	job := pow.NewJob(ctx, &template, opts)
	job.Start()
	result, ok := <-job.Done()
	if !ok {
		return ctx.Err()
	}
	if result.Err != nil {
		return result.Err
	}

	event := result.Event.Event
	if secretKey != "" {
		if err := event.Sign(secretKey); err != nil {
			return fmt.Errorf("sign event: %w", err)
		}
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(mineOutput{
		Event:      eventJSON,
		Difficulty: result.Event.Metadata.Difficulty,
		Iterations: result.Event.Metadata.Iterations,
		TimeMs:     result.Event.Metadata.Elapsed.Milliseconds(),
	})
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}
