// Package hasher computes NIP-01 event ids.
package hasher

import (
	"encoding/hex"

	"github.com/minio/sha256-simd"
	"github.com/nbd-wtf/go-nostr"

	"nostr/pkg/byte_pool"
)

var hexPool = byte_pool.NewPool(sha256.Size * 2)

// ID is the lowercase hex sha256 of the event's canonical serialization,
// the same value as nostr.Event.GetID.
func ID(event *nostr.Event) string {
	sum := sha256.Sum256(event.Serialize())

	buffer, put := hexPool.Get()
	defer put()
	buffer = buffer[:hex.EncodedLen(len(sum))]
	hex.Encode(buffer, sum[:])
	return string(buffer)
}
