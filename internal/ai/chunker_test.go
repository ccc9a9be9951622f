package ai

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkerSplitsOnHeadings(t *testing.T) {
	md := strings.Join([]string{
		"# Care Guide",
		"Cats need fresh water every day.",
		"## Feeding",
		"Feed adult cats twice daily.",
	}, "\n\n")

	chunks := NewChunker().Chunk(context.Background(), md)
	require.Len(t, chunks, 2)

	require.Equal(t, "Care Guide", chunks[0].Heading)
	require.Equal(t, 0, chunks[0].Position)
	require.True(t, strings.HasPrefix(chunks[0].Content, "Care Guide\n"))
	require.Contains(t, chunks[0].Content, "fresh water")

	require.Equal(t, "Feeding", chunks[1].Heading)
	require.Equal(t, 1, chunks[1].Position)
	require.Contains(t, chunks[1].Content, "twice daily")
}

func TestChunkerPacksLongSectionsWithOverlap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# Long Section\n\n")
	for i := 1; i <= 9; i++ {
		sb.WriteString(strings.Repeat(fmt.Sprintf("p%d ", i), 50))
		sb.WriteString("\n\n")
	}

	chunks := NewChunker().Chunk(context.Background(), sb.String())
	require.Len(t, chunks, 2)

	require.Contains(t, chunks[0].Content, "p1")
	require.Contains(t, chunks[0].Content, "p8")
	require.NotContains(t, chunks[0].Content, "p9")
	// The tail of the previous chunk carries over.
	require.Contains(t, chunks[1].Content, "p8")
	require.Contains(t, chunks[1].Content, "p9")

	require.Equal(t, "Long Section", chunks[1].Heading)
	require.Equal(t, 1, chunks[1].Position)
}

func TestChunkerEmptyInput(t *testing.T) {
	require.Empty(t, NewChunker().Chunk(context.Background(), ""))
	require.Empty(t, NewChunker().Chunk(context.Background(), "# heading only"))
}

func TestEstimateTokens(t *testing.T) {
	require.Equal(t, 2, estimateTokens("hello world"))
	// CJK text counts roughly one token per rune.
	require.Equal(t, 5, estimateTokens("貓咪健康"))
	require.Equal(t, 1, estimateTokens(" "))
	require.Equal(t, 0, estimateTokens(""))
}
