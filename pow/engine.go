package pow

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/nbd-wtf/go-nostr"
)

const (
	DefaultMaxIterations = 10_000_000
	DefaultTimeout       = 300 * time.Second
	DefaultBatchSize     = 10_000

	// created_at is advanced by one second every timestampStep attempts
	timestampStep = 100_000
)

// HashFunc computes the hex id of an event from its canonical serialization.
type HashFunc func(event *nostr.Event) string

// ProgressFunc observes the best difficulty found so far. It is called only when
// the best difficulty strictly increases.
type ProgressFunc func(iterations, bestDifficulty int)

type Options struct {
	TargetDifficulty int
	MaxIterations    int
	Timeout          time.Duration
	OnProgress       ProgressFunc

	// BatchSize is the number of candidates hashed between two yields.
	BatchSize int
	Hash      HashFunc
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Hash == nil {
		o.Hash = eventID
	}
	return o
}

func eventID(event *nostr.Event) string {
	return event.GetID()
}

type Metadata struct {
	Difficulty int
	Iterations int
	Elapsed    time.Duration
}

// MinedEvent is an unsigned event whose ID satisfies the requested difficulty.
type MinedEvent struct {
	nostr.Event
	Metadata Metadata
}

// MineEvent searches nonces 0, 1, 2, ... until the event id reaches
// opts.TargetDifficulty. The search runs on the calling goroutine and yields to
// the scheduler between batches.
//
// On timeout or when opts.MaxIterations is reached it returns a *Failure. When
// ctx is cancelled it returns ctx.Err() and no result: the progress observer is
// not called once cancellation is seen.
func MineEvent(ctx context.Context, event *nostr.Event, opts Options) (*MinedEvent, error) {
	if opts.TargetDifficulty < 0 {
		return nil, ErrInvalidTarget
	}
	s := newSession(cloneEvent(event), opts.withDefaults())
	return s.run(ctx)
}

// session is the state of a single mining run. It is owned by one goroutine.
type session struct {
	template nostr.Event
	opts     Options

	next  int
	best  int
	start time.Time
}

func newSession(template nostr.Event, opts Options) *session {
	return &session{
		template: template,
		opts:     opts,
		start:    time.Now(),
	}
}

func (s *session) run(ctx context.Context) (*MinedEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mined, err := s.batch(ctx)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if mined != nil || err != nil {
			return mined, err
		}
		if s.next >= s.opts.MaxIterations {
			return nil, s.fail(ReasonExhausted, s.next)
		}
		runtime.Gosched()
	}
}

// batch hashes at most BatchSize candidates without overshooting MaxIterations.
// It returns (nil, nil) when the batch ends without a result.
func (s *session) batch(ctx context.Context) (*MinedEvent, error) {
	end := s.next + s.opts.BatchSize
	if end > s.opts.MaxIterations {
		end = s.opts.MaxIterations
	}

	for ; s.next < end; s.next++ {
		i := s.next
		candidate := AddNonceTag(s.template, strconv.Itoa(i), s.opts.TargetDifficulty)
		candidate.CreatedAt = s.template.CreatedAt + nostr.Timestamp(i/timestampStep)

		id := s.opts.Hash(&candidate)
		difficulty := CountLeadingZeroBits(id)

		if difficulty > s.best {
			s.best = difficulty
			if s.opts.OnProgress != nil && ctx.Err() == nil {
				s.opts.OnProgress(i, difficulty)
			}
		}

		elapsed := time.Since(s.start)
		if difficulty >= s.opts.TargetDifficulty {
			candidate.ID = id
			s.next++
			return &MinedEvent{
				Event: candidate,
				Metadata: Metadata{
					Difficulty: difficulty,
					Iterations: i,
					Elapsed:    elapsed,
				},
			}, nil
		}
		if elapsed > s.opts.Timeout {
			s.next++
			return nil, s.fail(ReasonTimeout, i)
		}
	}
	return nil, nil
}

func (s *session) fail(reason Reason, iterations int) *Failure {
	return &Failure{
		Reason:         reason,
		Iterations:     iterations,
		BestDifficulty: s.best,
		Elapsed:        time.Since(s.start),
	}
}
