package types

// MatchedChunk is a chunk row returned by vector search along with its
// cosine similarity to the query, in [0,1] after thresholding.
type MatchedChunk struct {
	DocumentChunk
	Similarity float64 `db:"similarity" json:"similarity"`
}
