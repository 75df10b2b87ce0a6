package miner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"nostr/pkg/hasher"
	"nostr/pkg/ring_buffer"
	"nostr/pow"
)

const (
	// MineTimeout is short because a template goes stale as soon as the feed
	// announces a newer noss event.
	MineTimeout = time.Second * 1

	recentEvents = 200
	notReadyWait = 100 * time.Millisecond
)

var (
	ErrNotReady       = errors.New("miner: witness or reply event not known yet")
	ErrPubKeyMismatch = errors.New("miner: signing changed the event id, pk does not match sk")
)

// WitnessSource supplies the latest Arbitrum block.
type WitnessSource interface {
	LatestNumber() uint64
	LatestHex() string
}

// ReplySource supplies the id of the latest noss event.
type ReplySource interface {
	GetLatestEventID() string
}

type Publisher interface {
	Publish(ctx context.Context, event *nostr.Event) error
}

type Options struct {
	PublicKey     string
	SecretKey     string
	Difficulty    int
	Timeout       time.Duration
	MaxIterations int
	Workers       int
	RelayURL      string

	// Registerer receives the miner metrics; nil disables registration.
	Registerer prometheus.Registerer
}

type Miner struct {
	arb       WitnessSource
	noss      ReplySource
	publisher Publisher
	opts      Options
	metrics   *metrics

	// ids of recently published events; seeing one on the feed means we won
	cache *ring_buffer.RingBuffer[string]
}

func NewMiner(arb WitnessSource, noss ReplySource, publisher Publisher, opts Options) *Miner {
	if opts.Timeout <= 0 {
		opts.Timeout = MineTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Miner{
		arb:       arb,
		noss:      noss,
		publisher: publisher,
		opts:      opts,
		metrics:   newMetrics(opts.Registerer),
		cache:     ring_buffer.NewRingBuffer[string](recentEvents),
	}
}

// Mine runs the configured number of workers until ctx is done. Each worker
// mines and publishes mint events one after the other.
func (m *Miner) Mine(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < m.opts.Workers; i++ {
		worker := i
		g.Go(func() error {
			m.work(ctx, worker)
			return nil
		})
	}
	return g.Wait()
}

func (m *Miner) work(ctx context.Context, worker int) {
	log := logrus.WithField("worker", worker)
	for ctx.Err() == nil {
		_, err := m.MineOnce(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotReady):
			select {
			case <-ctx.Done():
			case <-time.After(notReadyWait):
			}
		case errors.Is(err, pow.ErrTimeout), errors.Is(err, pow.ErrExhausted):
			log.Debug(err)
		case ctx.Err() != nil:
		default:
			log.Errorf("mine: %s", err)
		}
	}
}

// MineOnce builds a template from the current chain state, mines it, signs it
// and publishes it. A *pow.Failure is returned when the difficulty was not
// reached in time; the caller simply tries again with a fresh template.
func (m *Miner) MineOnce(ctx context.Context) (*nostr.Event, error) {
	replyTo := m.noss.GetLatestEventID()
	witness := Witness{Number: m.arb.LatestNumber(), Hash: m.arb.LatestHex()}
	if replyTo == "" || witness.Hash == "" {
		return nil, ErrNotReady
	}

	template := MintTemplate(m.opts.PublicKey, m.opts.RelayURL, replyTo, witness)
	best := 0
	mined, err := pow.MineEvent(ctx, &template, pow.Options{
		TargetDifficulty: m.opts.Difficulty,
		MaxIterations:    m.opts.MaxIterations,
		Timeout:          m.opts.Timeout,
		Hash:             hasher.ID,
		OnProgress: func(iterations, difficulty int) {
			best = difficulty
			logrus.WithFields(logrus.Fields{
				"iterations": iterations,
				"difficulty": difficulty,
			}).Trace("mining progress")
		},
	})
	m.metrics.bestDifficulty.Set(float64(best))

	var failure *pow.Failure
	if errors.As(err, &failure) {
		m.metrics.hashes.Add(float64(failure.Iterations))
		m.metrics.failures.WithLabelValues(failure.Reason.String()).Inc()
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	m.metrics.hashes.Add(float64(mined.Metadata.Iterations + 1))
	m.metrics.mined.Inc()

	event := mined.Event
	if err := event.Sign(m.opts.SecretKey); err != nil {
		return nil, fmt.Errorf("sign event: %w", err)
	}
	if event.ID != mined.ID {
		return nil, ErrPubKeyMismatch
	}

	if err := m.publisher.Publish(ctx, &event); err != nil {
		m.metrics.publishErrors.Inc()
		return nil, err
	}
	m.cache.Push(event.ID)

	logrus.WithFields(logrus.Fields{
		"id":         event.ID,
		"difficulty": mined.Metadata.Difficulty,
		"iterations": mined.Metadata.Iterations,
		"spend":      mined.Metadata.Elapsed,
	}).Info("published")
	return &event, nil
}

// OnNossEvent is the noss feed callback. It reports whether the announced event
// is one this miner published.
func (m *Miner) OnNossEvent(eventID string) bool {
	if !m.cache.Contains(eventID) {
		return false
	}
	logrus.WithField("id", eventID).Info("our event was accepted by noss")
	return true
}
