package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessageShort(t *testing.T) {
	chunks := SplitMessage("hello\nworld", 4096)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello\nworld", chunks[0])
}

func TestSplitMessageAtLineBoundaries(t *testing.T) {
	line := strings.Repeat("a", 100)
	var lines []string
	for i := 0; i < 90; i++ {
		lines = append(lines, line)
	}
	text := strings.Join(lines, "\n") // 9089 chars

	chunks := SplitMessage(text, 4096)

	require.GreaterOrEqual(t, len(chunks), 2)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 4096, "chunk %d over limit", i)
	}

	// Rejoining with the original line breaks reconstructs the content
	assert.Equal(t, text, strings.Join(chunks, "\n"))
}

func TestSplitMessageHardCutsOversizedLine(t *testing.T) {
	text := strings.Repeat("b", 9000)

	chunks := SplitMessage(text, 4096)

	require.Len(t, chunks, 3)
	assert.Equal(t, 4096, len(chunks[0]))
	assert.Equal(t, 4096, len(chunks[1]))
	assert.Equal(t, 9000-2*4096, len(chunks[2]))
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitMessageMixed(t *testing.T) {
	oversized := strings.Repeat("c", 5000)
	text := "intro line\n" + oversized + "\noutro line"

	chunks := SplitMessage(text, 4096)

	require.GreaterOrEqual(t, len(chunks), 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 4096)
	}

	joined := strings.Join(chunks, "")
	assert.Contains(t, joined, "intro line")
	assert.Contains(t, joined, "outro line")
	assert.Equal(t, strings.Count(text, "c"), strings.Count(joined, "c"))
}

func TestSplitMessageDefaultLimit(t *testing.T) {
	chunks := SplitMessage(strings.Repeat("d", MaxMessageLength+1), 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, MaxMessageLength, len(chunks[0]))
}
