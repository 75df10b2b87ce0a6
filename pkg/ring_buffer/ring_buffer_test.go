package ring_buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer(t *testing.T) {
	r := NewRingBuffer[string](3)
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Contains(""))

	r.Push("a")
	r.Push("b")
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Contains("a"))
	assert.False(t, r.Contains("c"))

	r.Push("c")
	r.Push("d")
	assert.Equal(t, 3, r.Len())
	assert.False(t, r.Contains("a"), "oldest value is evicted")
	assert.True(t, r.Contains("b"))
	assert.True(t, r.Contains("d"))
}
