package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		sum1 := ChecksumFromContent([]byte("hello world"))
		sum2 := ChecksumFromContent([]byte("hello world"))
		assert.Equal(t, sum1, sum2)
	})

	t.Run("distinct content distinct checksum", func(t *testing.T) {
		sum1 := ChecksumFromContent([]byte("hello world"))
		sum2 := ChecksumFromContent([]byte("hello worlds"))
		assert.NotEqual(t, sum1, sum2)
	})

	t.Run("hex encoded 256 bits", func(t *testing.T) {
		sum := ChecksumFromContent([]byte("content"))
		assert.Len(t, sum, 64)
	})

	t.Run("empty content has a checksum", func(t *testing.T) {
		assert.NotEmpty(t, ChecksumFromContent(nil))
	})
}

func TestNewJobID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewJobID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate job id %s", id)
		seen[id] = true
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusQueued.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusDone.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}
