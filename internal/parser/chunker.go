// Package parser splits raw source documents into index-ready chunks.
package parser

import (
	"strings"
	"unicode"
)

// ChunkConfig defines chunking parameters.
type ChunkConfig struct {
	// MaxSize: maximum chunk size in characters.
	MaxSize int
	// Overlap: character overlap between adjacent chunks.
	Overlap int
}

// DefaultChunkConfig returns the defaults used for ingested web pages.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxSize: 1000,
		Overlap: 150,
	}
}

// Chunk splits content into chunks of at most MaxSize characters, preferring
// paragraph boundaries, then sentence boundaries, and applies the configured
// overlap between adjacent chunks.
func Chunk(content string, config ChunkConfig) []string {
	if config.MaxSize <= 0 {
		config = DefaultChunkConfig()
	}
	if config.Overlap < 0 {
		config.Overlap = 0
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if len(content) <= config.MaxSize {
		return []string{content}
	}

	chunks := chunkByParagraphs(content, config)
	return applyOverlap(chunks, config.Overlap)
}

// chunkByParagraphs accumulates paragraphs up to MaxSize, splitting oversized
// paragraphs at sentence boundaries.
func chunkByParagraphs(content string, config ChunkConfig) []string {
	paragraphs := strings.Split(content, "\n\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if current.Len()+len(para) > config.MaxSize && current.Len() > 0 {
			flush()
		}

		if len(para) > config.MaxSize {
			flush()
			chunks = append(chunks, chunkBySentences(para, config)...)
			continue
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}

	flush()
	return chunks
}

// chunkBySentences splits text at sentence boundaries, accumulating up to
// MaxSize per chunk. Sentences longer than MaxSize are hard-split.
func chunkBySentences(text string, config ChunkConfig) []string {
	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		for len(sentence) > config.MaxSize {
			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimSpace(current.String()))
				current.Reset()
			}
			chunks = append(chunks, sentence[:config.MaxSize])
			sentence = strings.TrimSpace(sentence[config.MaxSize:])
		}
		if sentence == "" {
			continue
		}

		if current.Len()+len(sentence) > config.MaxSize && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

// splitSentences splits text into sentences.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Look ahead for space or end
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				// Not an abbreviation (simple heuristic)
				if i > 1 && unicode.IsUpper(runes[i-1]) {
					continue // Likely abbreviation like "Dr."
				}
				sentences = append(sentences, current.String())
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}

	return sentences
}

// applyOverlap prefixes each chunk after the first with the tail of its
// predecessor, snapped to a word boundary.
func applyOverlap(chunks []string, overlap int) []string {
	if overlap <= 0 || len(chunks) <= 1 {
		return chunks
	}

	result := make([]string, len(chunks))
	copy(result, chunks)

	for i := 1; i < len(result); i++ {
		prev := chunks[i-1]
		if len(prev) <= overlap {
			continue
		}
		overlapText := prev[len(prev)-overlap:]
		if spaceIdx := strings.LastIndex(overlapText, " "); spaceIdx > 0 {
			overlapText = overlapText[spaceIdx+1:]
		}
		result[i] = overlapText + " " + result[i]
	}

	return result
}
