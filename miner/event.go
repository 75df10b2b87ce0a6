package miner

import (
	"strconv"

	"github.com/nbd-wtf/go-nostr"
)

const (
	mintContent = `{"p":"nrc-20","op":"mint","tick":"noss","amt":"10"}`

	// noss deployer and the root event every mint replies under
	nossPubKey      = "9be107b0d7218c67b4954ee3e6bd9e4dba06ef937a93f684e42f730a0c3d053c"
	nossRootEventID = "51ed7939a984edee863bfbb2e66fdc80436b000a8ddca442d83e6a2bf1636a95"
)

// EV is the event layout the inscription endpoint accepts.
type EV struct {
	Sig       string          `json:"sig"`
	Id        string          `json:"id"`
	Kind      int             `json:"kind"`
	CreatedAt nostr.Timestamp `json:"created_at"`
	Tags      nostr.Tags      `json:"tags"`
	Content   string          `json:"content"`
	PubKey    string          `json:"pubkey"`
}

func newEV(event *nostr.Event) EV {
	return EV{
		Sig:       event.Sig,
		Id:        event.ID,
		Kind:      event.Kind,
		CreatedAt: event.CreatedAt,
		Tags:      event.Tags,
		Content:   event.Content,
		PubKey:    event.PubKey,
	}
}

// Witness is the Arbitrum block a mint event is anchored to.
type Witness struct {
	Number uint64
	Hash   string
}

// MintTemplate builds the unsigned noss mint event replying to replyTo.
func MintTemplate(publicKey, relayURL, replyTo string, witness Witness) nostr.Event {
	ev := nostr.Event{
		Content:   mintContent,
		CreatedAt: nostr.Now(),
		Kind:      nostr.KindTextNote,
		PubKey:    publicKey,
	}
	ev.Tags = ev.Tags.AppendUnique(nostr.Tag{"p", nossPubKey})
	ev.Tags = ev.Tags.AppendUnique(nostr.Tag{"e", nossRootEventID, relayURL, "root"})
	ev.Tags = ev.Tags.AppendUnique(nostr.Tag{"e", replyTo, relayURL, "reply"})
	ev.Tags = ev.Tags.AppendUnique(nostr.Tag{"seq_witness", strconv.FormatUint(witness.Number, 10), witness.Hash})
	return ev
}
