package knowledge

import (
	"fmt"
	"regexp"
	"strings"
)

// Chunk is a titled unit of reference text ready for embedding.
type Chunk struct {
	Title   string
	Content string
}

var sectionSeparator = regexp.MustCompile(`\n\s*\n`)

// chunkDocument splits a bulk text source at blank-line boundaries and
// builds a titled chunk per section. Sections whose content exceeds
// sizeCap are further split at paragraph boundaries, each part keeping
// the section title with a part suffix.
func chunkDocument(source string, sizeCap int) []Chunk {
	var chunks []Chunk

	for _, section := range sectionSeparator.Split(source, -1) {
		chunk, ok := chunkSection(section)
		if !ok {
			continue
		}

		if sizeCap > 0 && len(chunk.Content) > sizeCap {
			parts := splitOversized(chunk.Content, sizeCap)
			for i, part := range parts {
				chunks = append(chunks, Chunk{
					Title:   fmt.Sprintf("%s (Part %d)", chunk.Title, i+1),
					Content: part,
				})
			}
			continue
		}

		chunks = append(chunks, chunk)
	}

	return chunks
}

// chunkSection builds one chunk from a section of text. The first
// non-empty line becomes the title and the remainder the content.
// Single-line sections derive a synthetic title from their first few
// words; sections too short to title are dropped.
func chunkSection(section string) (Chunk, bool) {
	section = strings.TrimSpace(section)
	if section == "" {
		return Chunk{}, false
	}

	lines := strings.Split(section, "\n")
	if len(lines) >= 2 {
		title := strings.TrimSpace(lines[0])
		content := strings.TrimSpace(strings.Join(lines[1:], "\n"))
		if title == "" || content == "" {
			return Chunk{}, false
		}
		return Chunk{Title: title, Content: content}, true
	}

	// Single-line section: synthesize a title from the first few words.
	words := strings.Fields(section)
	if len(words) <= 3 {
		return Chunk{}, false
	}
	return Chunk{
		Title:   strings.Join(words[:3], " ") + "...",
		Content: section,
	}, true
}

// splitParagraphs splits text into pieces no larger than sizeCap,
// accumulating whole paragraphs greedily. A single paragraph larger
// than the cap stays intact rather than being split mid-paragraph.
func splitParagraphs(text string, sizeCap int) []string {
	return splitBlocks(text, "\n\n", sizeCap)
}

// splitOversized packs text into pieces no larger than sizeCap, first
// at paragraph boundaries and then at line boundaries for any piece
// still over the cap.
func splitOversized(text string, sizeCap int) []string {
	var chunks []string
	for _, part := range splitParagraphs(text, sizeCap) {
		if len(part) > sizeCap {
			chunks = append(chunks, splitBlocks(part, "\n", sizeCap)...)
			continue
		}
		chunks = append(chunks, part)
	}
	return chunks
}

func splitBlocks(text, sep string, sizeCap int) []string {
	var chunks []string
	var current string

	for _, block := range strings.Split(text, sep) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		if current != "" && len(current)+len(sep)+len(block) > sizeCap {
			chunks = append(chunks, current)
			current = block
			continue
		}

		if current == "" {
			current = block
		} else {
			current += sep + block
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}
