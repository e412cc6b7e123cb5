package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkSection(t *testing.T) {
	tests := []struct {
		name      string
		section   string
		wantChunk Chunk
		wantOK    bool
	}{
		{
			name:    "title line followed by body",
			section: "Refund Policy\nRefunds are processed within 3 days.",
			wantChunk: Chunk{
				Title:   "Refund Policy",
				Content: "Refunds are processed within 3 days.",
			},
			wantOK: true,
		},
		{
			name:    "title separated from body by blank line",
			section: "Title\n\nBody line one.\nBody line two.",
			wantChunk: Chunk{
				Title:   "Title",
				Content: "Body line one.\nBody line two.",
			},
			wantOK: true,
		},
		{
			name:    "single line gets synthetic title",
			section: "Shipping takes five business days worldwide",
			wantChunk: Chunk{
				Title:   "Shipping takes five...",
				Content: "Shipping takes five business days worldwide",
			},
			wantOK: true,
		},
		{
			name:    "single line too short is dropped",
			section: "Too short here",
			wantOK:  false,
		},
		{
			name:    "empty section is dropped",
			section: "   \n  ",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk, ok := chunkSection(tt.section)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantChunk, chunk)
			}
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	first := strings.Repeat("a", 200)
	second := strings.Repeat("b", 200)
	third := strings.Repeat("c", 200)
	source := first + "\n\n" + second + "\n\n" + third

	chunks := splitParagraphs(source, 500)

	assert.GreaterOrEqual(t, len(chunks), 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 500)
	}

	// Rejoining the chunks reproduces the source text.
	assert.Equal(t, source, strings.Join(chunks, "\n\n"))
}

func TestSplitParagraphs_KeepsOversizedParagraphIntact(t *testing.T) {
	huge := strings.Repeat("x", 800)

	chunks := splitParagraphs(huge, 500)

	assert.Equal(t, []string{huge}, chunks)
}

func TestChunkDocument(t *testing.T) {
	source := "Returns\nItems can be returned within 30 days.\n\n" +
		"Warranty\nAll products carry a one year warranty."

	chunks := chunkDocument(source, 500)

	assert.Len(t, chunks, 2)
	assert.Equal(t, "Returns", chunks[0].Title)
	assert.Equal(t, "Items can be returned within 30 days.", chunks[0].Content)
	assert.Equal(t, "Warranty", chunks[1].Title)
	assert.Equal(t, "All products carry a one year warranty.", chunks[1].Content)
}

func TestChunkDocument_SplitsOversizedSections(t *testing.T) {
	body := strings.Repeat("a", 300) + "\n" + strings.Repeat("b", 300)
	source := "Big Section\n" + body

	chunks := chunkDocument(source, 500)

	assert.Len(t, chunks, 2)
	assert.Equal(t, "Big Section (Part 1)", chunks[0].Title)
	assert.Equal(t, "Big Section (Part 2)", chunks[1].Title)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 500)
	}
}
