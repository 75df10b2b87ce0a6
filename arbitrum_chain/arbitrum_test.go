package arbitrum_chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	c := newArbitrumChain("test")
	assert.Equal(t, "", c.LatestHex())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.WaitReady(ctx), context.Canceled)

	head := &types.Header{Number: big.NewInt(160_000_000), Difficulty: big.NewInt(1)}
	c.observe(head)

	require.NoError(t, c.WaitReady(context.Background()))
	assert.Equal(t, uint64(160_000_000), c.LatestNumber())
	assert.Equal(t, head.Hash().Hex(), c.LatestHex())

	// an older head never replaces a newer one
	c.observe(&types.Header{Number: big.NewInt(159_999_999), Difficulty: big.NewInt(1)})
	assert.Equal(t, uint64(160_000_000), c.LatestNumber())
	assert.Equal(t, head.Hash().Hex(), c.LatestHex())

	c.observe(nil)
	assert.Equal(t, uint64(160_000_000), c.LatestNumber())
}
