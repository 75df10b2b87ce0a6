package arbitrum_chain

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// ArbitrumChain tracks the latest Arbitrum block, which noss mint events carry
// as their ["seq_witness", number, hash] tag.
type ArbitrumChain struct {
	url    string
	client *ethclient.Client

	latestHex    atomic.Value
	latestNumber atomic.Uint64

	ready     chan struct{}
	readyOnce sync.Once
}

func NewArbitrumChain(ctx context.Context, url string) (*ArbitrumChain, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial arbitrum node %s: %w", url, err)
	}
	c := newArbitrumChain(url)
	c.client = client
	return c, nil
}

func newArbitrumChain(url string) *ArbitrumChain {
	return &ArbitrumChain{
		url:   url,
		ready: make(chan struct{}),
	}
}

// ListenNewHeader fetches the current head and then follows new heads until ctx
// is done or the subscription fails.
func (c *ArbitrumChain) ListenNewHeader(ctx context.Context) error {
	head, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return fmt.Errorf("latest header from %s: %w", c.url, err)
	}
	c.observe(head)

	listener := make(chan *types.Header)
	sub, err := c.client.SubscribeNewHead(ctx, listener)
	if err != nil {
		return fmt.Errorf("subscribe new heads on %s: %w", c.url, err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case head := <-listener:
			c.observe(head)
		case err := <-sub.Err():
			return fmt.Errorf("new heads subscription on %s: %w", c.url, err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *ArbitrumChain) observe(head *types.Header) {
	if head == nil || head.Number == nil {
		return
	}
	number := head.Number.Uint64()
	if number < c.latestNumber.Load() {
		return
	}
	hex := head.Hash().Hex()
	logrus.WithFields(logrus.Fields{"number": number, "hash": hex}).Debug("new arbitrum head")

	c.latestHex.Store(hex)
	c.latestNumber.Store(number)
	c.readyOnce.Do(func() { close(c.ready) })
}

func (c *ArbitrumChain) LatestHex() string {
	hex, _ := c.latestHex.Load().(string)
	return hex
}

func (c *ArbitrumChain) LatestNumber() uint64 {
	return c.latestNumber.Load()
}

// WaitReady blocks until the first head has been seen.
func (c *ArbitrumChain) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
