package pow

import (
	"context"
	"sync"

	"github.com/nbd-wtf/go-nostr"
)

// Result is the outcome of a Job that was not cancelled.
type Result struct {
	Event *MinedEvent
	Err   error
}

// Job runs MineEvent on its own goroutine. The channel returned by Done receives
// exactly one Result and is then closed; a cancelled job closes it without
// sending anything.
type Job struct {
	template nostr.Event
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc
	start  sync.Once
	done   chan Result
}

// NewJob copies event, so later changes by the caller do not affect the job.
func NewJob(ctx context.Context, event *nostr.Event, opts Options) *Job {
	ctx, cancel := context.WithCancel(ctx)
	return &Job{
		template: cloneEvent(event),
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan Result, 1),
	}
}

// Start launches the search. Calling it more than once has no effect.
func (j *Job) Start() {
	j.start.Do(func() {
		go j.run()
	})
}

// Cancel abandons the search. From then on the progress observer is not called
// again and nothing is sent on Done.
func (j *Job) Cancel() {
	j.cancel()
}

func (j *Job) Done() <-chan Result {
	return j.done
}

func (j *Job) run() {
	defer close(j.done)
	defer j.cancel()

	mined, err := MineEvent(j.ctx, &j.template, j.opts)
	if j.ctx.Err() != nil {
		return
	}
	j.done <- Result{Event: mined, Err: err}
}
