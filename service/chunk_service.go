package service

import (
	"regexp"
	"strings"

	"github.com/insightdesk/insightdesk-be/types"
)

// ChunkService splits extracted text into overlapping, paragraph-bounded
// segments sized for the embedding model's input limit.
type ChunkService struct {
	maxTokens     int
	overlapTokens int
}

type ChunkingConfig struct {
	MaxTokens     int
	OverlapTokens int
}

var DefaultChunkingConfig = ChunkingConfig{
	MaxTokens:     1000,
	OverlapTokens: 200,
}

// TextChunk is one segment of source text with best-effort offsets. Offsets
// are approximate once overlap text has been spliced in; they are recorded
// for traceability, not exact reconstruction.
type TextChunk struct {
	Content    string
	StartIndex int
	EndIndex   int
	Metadata   types.JSONMap
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

func NewChunkService(config ChunkingConfig) *ChunkService {
	return &ChunkService{
		maxTokens:     config.MaxTokens,
		overlapTokens: config.OverlapTokens,
	}
}

// EstimateTokenCount approximates token count as ceil(chars/4). All sizing
// decisions use this same cheap proxy, not exact tokenization.
func EstimateTokenCount(text string) int {
	return (len(text) + 3) / 4
}

// Chunk splits text on blank-line boundaries into paragraphs and greedily
// accumulates them into chunks of at most maxTokens. Each chunk after the
// first is seeded with an overlap suffix of the previous chunk. A single
// paragraph longer than maxTokens is never split further.
func (s *ChunkService) Chunk(text string) []TextChunk {
	var chunks []TextChunk

	var paragraphs []string
	for _, p := range paragraphSplit.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	currentChunk := ""
	currentStartIndex := 0
	chunkIndex := 0

	for _, raw := range paragraphs {
		paragraph := strings.TrimSpace(raw)
		paragraphTokens := EstimateTokenCount(paragraph)
		currentChunkTokens := EstimateTokenCount(currentChunk)

		if currentChunkTokens+paragraphTokens > s.maxTokens && len(currentChunk) > 0 {
			chunks = append(chunks, TextChunk{
				Content:    strings.TrimSpace(currentChunk),
				StartIndex: currentStartIndex,
				EndIndex:   currentStartIndex + len(currentChunk),
				Metadata: types.JSONMap{
					"chunk_index": chunkIndex,
					"type":        "paragraph_based",
				},
			})

			overlapText := s.overlapTail(currentChunk)
			currentChunk = overlapText + "\n\n" + paragraph
			// Best-effort bookkeeping only: the overlap splice makes exact
			// source offsets unrecoverable from here on.
			currentStartIndex = currentStartIndex + len(currentChunk) - len(overlapText) - len(paragraph) - 2
			chunkIndex++
		} else {
			if len(currentChunk) > 0 {
				currentChunk += "\n\n" + paragraph
			} else {
				currentChunk = paragraph
				currentStartIndex = strings.Index(text, paragraph)
			}
		}
	}

	if strings.TrimSpace(currentChunk) != "" {
		chunks = append(chunks, TextChunk{
			Content:    strings.TrimSpace(currentChunk),
			StartIndex: currentStartIndex,
			EndIndex:   currentStartIndex + len(currentChunk),
			Metadata: types.JSONMap{
				"chunk_index": chunkIndex,
				"type":        "paragraph_based",
			},
		})
	}

	// Text shorter than maxTokens or with no paragraph boundaries comes back
	// as a single chunk.
	if len(chunks) == 0 {
		chunks = append(chunks, TextChunk{
			Content:    strings.TrimSpace(text),
			StartIndex: 0,
			EndIndex:   len(text),
			Metadata: types.JSONMap{
				"chunk_index": 0,
				"type":        "single",
			},
		})
	}

	return chunks
}

// overlapTail returns a suffix of text sized to roughly overlapTokens tokens,
// trimmed to the nearest preceding sentence boundary when one exists within
// half the overlap window.
func (s *ChunkService) overlapTail(text string) string {
	overlapChars := s.overlapTokens * 4
	if overlapChars <= 0 {
		return ""
	}
	if len(text) <= overlapChars {
		return text
	}

	overlapStart := len(text) - overlapChars
	sentenceStart := strings.LastIndex(text[:overlapStart+1], ".")

	if sentenceStart > overlapStart-overlapChars/2 {
		return strings.TrimSpace(text[sentenceStart+1:])
	}

	return strings.TrimSpace(text[overlapStart:])
}
