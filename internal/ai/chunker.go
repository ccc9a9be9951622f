package ai

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
)

const (
	chunkTokenBudget  = 400
	chunkOverlapLimit = 80
)

// KnowledgeChunk is one retrievable slice of an imported knowledge article.
type KnowledgeChunk struct {
	Heading    string
	Content    string
	Position   int
	TokenCount int
}

type Chunker struct{}

func NewChunker() *Chunker {
	return &Chunker{}
}

// Chunk splits a markdown article along level-1/2 headings, packing body
// blocks into roughly chunkTokenBudget-token pieces with a short overlap so
// adjacent chunks keep context. Heading text is prepended to every chunk it
// governs.
func (c *Chunker) Chunk(ctx context.Context, markdown string) []KnowledgeChunk {
	logger := logutil.GetLogger(ctx)
	md := goldmark.New()
	reader := text.NewReader([]byte(markdown))
	doc := md.Parser().Parse(reader)

	var chunks []KnowledgeChunk
	var current []string
	var currentTokens int
	var heading string
	position := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		content := strings.Join(current, "\n\n")
		if heading != "" {
			content = heading + "\n" + content
		}
		chunks = append(chunks, KnowledgeChunk{
			Heading:    heading,
			Content:    content,
			Position:   position,
			TokenCount: estimateTokens(content),
		})
		position++

		// Keep a tail of the previous chunk so a fact split across the
		// boundary is still retrievable from both sides.
		overlapTokens := 0
		var overlap []string
		for i := len(current) - 1; i >= 0; i-- {
			t := estimateTokens(current[i])
			if overlapTokens+t > chunkOverlapLimit {
				break
			}
			overlapTokens += t
			overlap = append([]string{current[i]}, overlap...)
		}
		current = overlap
		currentTokens = overlapTokens
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok && h.Level <= 2 {
			flush()
			current = nil
			currentTokens = 0
			heading = string(h.Text(reader.Source()))
			continue
		}
		txt := extractText(node, reader.Source())
		if txt == "" {
			continue
		}
		tokens := estimateTokens(txt)
		if currentTokens+tokens > chunkTokenBudget {
			flush()
		}
		current = append(current, txt)
		currentTokens += tokens
	}
	flush()

	logger.Debug("markdown chunking completed",
		zap.Int("size", len(markdown)),
		zap.Int("total_chunks", len(chunks)),
	)
	return chunks
}

func estimateTokens(text string) int {
	// Rough heuristic: one token per word for latin text, one per rune for CJK.
	count := 0
	for _, r := range text {
		if r > 127 {
			count++
		}
	}
	count += len(strings.Fields(text))
	if count == 0 && len(text) > 0 {
		return 1
	}
	return count
}

func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			sb.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
