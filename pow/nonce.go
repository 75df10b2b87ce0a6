package pow

import (
	"strconv"

	"github.com/nbd-wtf/go-nostr"
)

// NonceTagName is the first element of the NIP-13 commitment tag
// ["nonce", <nonce>, <target difficulty>].
const NonceTagName = "nonce"

// AddNonceTag returns a copy of event whose tags have every nonce tag removed and
// a single ["nonce", nonce, targetDifficulty] appended. The input event is not
// modified; the remaining tags are shared with it.
func AddNonceTag(event nostr.Event, nonce string, targetDifficulty int) nostr.Event {
	tags := make(nostr.Tags, 0, len(event.Tags)+1)
	for _, tag := range event.Tags {
		if isNonceTag(tag) {
			continue
		}
		tags = append(tags, tag)
	}
	tags = append(tags, nostr.Tag{NonceTagName, nonce, strconv.Itoa(targetDifficulty)})

	event.Tags = tags
	return event
}

// CommittedDifficulty returns the target difficulty declared by the event's nonce
// tag. The last nonce tag wins if there is more than one.
func CommittedDifficulty(event *nostr.Event) (int, bool) {
	for i := len(event.Tags) - 1; i >= 0; i-- {
		tag := event.Tags[i]
		if !isNonceTag(tag) || len(tag) < 3 {
			continue
		}
		committed, err := strconv.Atoi(tag[2])
		if err != nil {
			return 0, false
		}
		return committed, true
	}
	return 0, false
}

func isNonceTag(tag nostr.Tag) bool {
	return len(tag) > 0 && tag[0] == NonceTagName
}

// cloneEvent deep copies the tags so the copy shares no mutable state with event.
func cloneEvent(event *nostr.Event) nostr.Event {
	c := *event
	c.ID = ""
	c.Sig = ""
	if event.Tags != nil {
		c.Tags = make(nostr.Tags, len(event.Tags))
		for i, tag := range event.Tags {
			c.Tags[i] = append(nostr.Tag(nil), tag...)
		}
	}
	return c
}
