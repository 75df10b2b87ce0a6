package pow_test

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nostr/pow"
)

func nonceTags(tags nostr.Tags) []nostr.Tag {
	var found []nostr.Tag
	for _, tag := range tags {
		if len(tag) > 0 && tag[0] == pow.NonceTagName {
			found = append(found, tag)
		}
	}
	return found
}

func TestAddNonceTag(t *testing.T) {
	event := nostr.Event{
		Kind:    nostr.KindTextNote,
		Content: "hello",
		Tags:    nostr.Tags{{"p", "abc"}, {"e", "def", "wss://relay", "root"}},
	}

	mined := pow.AddNonceTag(event, "42", 21)

	require.Len(t, mined.Tags, 3)
	assert.Equal(t, nostr.Tag{"p", "abc"}, mined.Tags[0])
	assert.Equal(t, nostr.Tag{"e", "def", "wss://relay", "root"}, mined.Tags[1])
	assert.Equal(t, nostr.Tag{"nonce", "42", "21"}, mined.Tags[2])

	// input untouched
	assert.Len(t, event.Tags, 2)
	assert.Empty(t, nonceTags(event.Tags))
}

func TestAddNonceTagReplaces(t *testing.T) {
	event := nostr.Event{Tags: nostr.Tags{{"nonce", "1", "8"}, {"t", "pow"}, {"nonce", "2", "9"}}}

	first := pow.AddNonceTag(event, "10", 16)
	second := pow.AddNonceTag(first, "11", 20)

	found := nonceTags(second.Tags)
	require.Len(t, found, 1)
	assert.Equal(t, nostr.Tag{"nonce", "11", "20"}, found[0])
	assert.Equal(t, nostr.Tag{"t", "pow"}, second.Tags[0])

	assert.Equal(t, nostr.Tag{"nonce", "10", "16"}, nonceTags(first.Tags)[0])
	assert.Len(t, event.Tags, 3)
}

func TestCommittedDifficulty(t *testing.T) {
	tests := []struct {
		tags      nostr.Tags
		committed int
		ok        bool
	}{
		{nil, 0, false},
		{nostr.Tags{{"nonce", "1"}}, 0, false},
		{nostr.Tags{{"nonce", "1", "twenty"}}, 0, false},
		{nostr.Tags{{"nonce", "1", "20"}}, 20, true},
		{nostr.Tags{{"nonce", "1", "0"}}, 0, true},
		{nostr.Tags{{"nonce", "1", "8"}, {"p", "x"}, {"nonce", "2", "12"}}, 12, true},
	}

	for _, test := range tests {
		event := nostr.Event{Tags: test.tags}
		committed, ok := pow.CommittedDifficulty(&event)
		assert.Equal(t, test.ok, ok, "tags: %v", test.tags)
		assert.Equal(t, test.committed, committed, "tags: %v", test.tags)
	}
}
