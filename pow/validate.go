package pow

import (
	"errors"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
)

var (
	ErrDifficultyTooLow = errors.New("nip13: insufficient difficulty")
	ErrCommitmentTooLow = errors.New("nip13: committed difficulty below requirement")
)

// Check reports why event does not satisfy requiredDifficulty, or nil if it does.
// A nonce tag committing to less than requiredDifficulty is rejected even when the
// id happens to have enough leading zero bits.
func Check(event *nostr.Event, requiredDifficulty int) error {
	actual := CountLeadingZeroBits(event.ID)

	if committed, ok := CommittedDifficulty(event); ok && committed < requiredDifficulty {
		return fmt.Errorf("%w: committed %d, required %d", ErrCommitmentTooLow, committed, requiredDifficulty)
	}
	if actual < requiredDifficulty {
		return fmt.Errorf("%w: actual %d, required %d", ErrDifficultyTooLow, actual, requiredDifficulty)
	}
	return nil
}

// ValidatePoW tells whether event carries at least requiredDifficulty bits of work.
func ValidatePoW(event *nostr.Event, requiredDifficulty int) bool {
	return Check(event, requiredDifficulty) == nil
}
