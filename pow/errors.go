package pow

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTimeout       = errors.New("nip13: generating proof of work took too long")
	ErrExhausted     = errors.New("nip13: iteration budget exhausted")
	ErrInvalidTarget = errors.New("nip13: target difficulty must not be negative")
)

// Reason tells why a mining run stopped without reaching its target.
type Reason int

const (
	ReasonTimeout Reason = iota + 1
	ReasonExhausted
)

func (r Reason) String() string {
	switch r {
	case ReasonTimeout:
		return "timeout"
	case ReasonExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Failure is returned by MineEvent when the target difficulty was not reached
// within the time or iteration budget. It matches ErrTimeout or ErrExhausted
// with errors.Is.
type Failure struct {
	Reason         Reason
	Iterations     int
	BestDifficulty int
	Elapsed        time.Duration
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s after %d iterations in %s (best difficulty %d)",
		f.Unwrap(), f.Iterations, f.Elapsed.Round(time.Millisecond), f.BestDifficulty)
}

func (f *Failure) Unwrap() error {
	if f.Reason == ReasonTimeout {
		return ErrTimeout
	}
	return ErrExhausted
}
