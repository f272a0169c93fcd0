package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokensEmpty(t *testing.T) {
	assert.Zero(t, CountTokens(""))
}

func TestCountTokensGrowsWithInput(t *testing.T) {
	short := CountTokens("hello world")
	long := CountTokens(strings.Repeat("hello world ", 100))

	assert.Greater(t, short, 0)
	assert.Greater(t, long, short)
}

func TestApproxTokens(t *testing.T) {
	assert.Equal(t, 0, approxTokens(""))
	assert.Equal(t, 4, approxTokens("one two three"))
}

func TestTruncateForSummary(t *testing.T) {
	content := "a b c d e f g h i j"

	t.Run("short content untouched", func(t *testing.T) {
		assert.Equal(t, content, TruncateForSummary(content, 5, 5))
	})

	t.Run("keeps head and tail", func(t *testing.T) {
		got := TruncateForSummary(content, 2, 2)
		assert.Equal(t, "a b\n...\ni j", got)
	})
}
