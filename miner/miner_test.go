package miner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nostr/pow"
)

const (
	testSecretKey = "0000000000000000000000000000000000000000000000000000000000000001"
	testPublicKey = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	testReplyTo   = "1111111111111111111111111111111111111111111111111111111111111111"
	testBlockHash = "0x2222222222222222222222222222222222222222222222222222222222222222"
)

type fakeChain struct {
	number  uint64
	hash    string
	replyTo string
}

func (f fakeChain) LatestNumber() uint64     { return f.number }
func (f fakeChain) LatestHex() string        { return f.hash }
func (f fakeChain) GetLatestEventID() string { return f.replyTo }

type endpoint struct {
	mu     sync.Mutex
	events []EV
	status int
}

func (e *endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Event EV `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, body.Event)
	if e.status != 0 {
		http.Error(w, "rejected", e.status)
	}
}

func (e *endpoint) received() []EV {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]EV(nil), e.events...)
}

func newTestMiner(t *testing.T, ep *endpoint, opts Options) *Miner {
	server := httptest.NewServer(ep)
	t.Cleanup(server.Close)

	chain := fakeChain{number: 160_000_000, hash: testBlockHash, replyTo: testReplyTo}
	if opts.PublicKey == "" {
		opts.PublicKey = testPublicKey
	}
	opts.SecretKey = testSecretKey
	opts.RelayURL = "wss://relay.example/"
	return NewMiner(chain, chain, NewHTTPPublisher(server.URL, server.Client()), opts)
}

func TestMineOncePublishes(t *testing.T) {
	ep := &endpoint{}
	m := newTestMiner(t, ep, Options{Difficulty: 6, Timeout: 10 * time.Second})

	event, err := m.MineOnce(context.Background())
	require.NoError(t, err)

	ok, err := event.CheckSignature()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, pow.ValidatePoW(event, 6))

	received := ep.received()
	require.Len(t, received, 1)
	assert.Equal(t, event.ID, received[0].Id)
	assert.Equal(t, event.Sig, received[0].Sig)
	assert.Equal(t, mintContent, received[0].Content)
	assert.Contains(t, received[0].Tags, nostr.Tag{"e", testReplyTo, "wss://relay.example/", "reply"})
	assert.Contains(t, received[0].Tags, nostr.Tag{"seq_witness", "160000000", testBlockHash})

	assert.True(t, m.OnNossEvent(event.ID))
	assert.False(t, m.OnNossEvent(testReplyTo))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.mined))
}

func TestMineOnceNotReady(t *testing.T) {
	m := NewMiner(fakeChain{}, fakeChain{}, nil, Options{})
	_, err := m.MineOnce(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestMineOnceFailure(t *testing.T) {
	ep := &endpoint{}
	m := newTestMiner(t, ep, Options{Difficulty: 256, MaxIterations: 50})

	_, err := m.MineOnce(context.Background())
	assert.ErrorIs(t, err, pow.ErrExhausted)
	assert.Empty(t, ep.received())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.failures.WithLabelValues("exhausted")))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.metrics.hashes))
}

func TestMineOnceRejected(t *testing.T) {
	ep := &endpoint{status: http.StatusTooManyRequests}
	m := newTestMiner(t, ep, Options{Difficulty: 2})

	_, err := m.MineOnce(context.Background())
	assert.Error(t, err)
	assert.Len(t, ep.received(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.publishErrors))
}

func TestMineOncePubKeyMismatch(t *testing.T) {
	ep := &endpoint{}
	m := newTestMiner(t, ep, Options{
		Difficulty: 0,
		PublicKey:  "c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5",
	})

	_, err := m.MineOnce(context.Background())
	assert.ErrorIs(t, err, ErrPubKeyMismatch)
	assert.Empty(t, ep.received())
}

func TestMineWorkers(t *testing.T) {
	ep := &endpoint{}
	reg := prometheus.NewRegistry()
	m := newTestMiner(t, ep, Options{Difficulty: 4, Workers: 3, Registerer: reg})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Mine(ctx) }()

	assert.Eventually(t, func() bool { return len(ep.received()) >= 3 }, 10*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("miner did not stop")
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMintTemplate(t *testing.T) {
	ev := MintTemplate(testPublicKey, "wss://relay.example/", testReplyTo, Witness{Number: 7, Hash: testBlockHash})

	assert.Equal(t, nostr.KindTextNote, ev.Kind)
	assert.Equal(t, testPublicKey, ev.PubKey)
	assert.Equal(t, nostr.Tags{
		{"p", nossPubKey},
		{"e", nossRootEventID, "wss://relay.example/", "root"},
		{"e", testReplyTo, "wss://relay.example/", "reply"},
		{"seq_witness", "7", testBlockHash},
	}, ev.Tags)
	_, ok := pow.CommittedDifficulty(&ev)
	assert.False(t, ok)
}
