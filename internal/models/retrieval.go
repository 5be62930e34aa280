package models

// Document is a chunk of source text prepared for indexing.
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RetrievedChunk is a document returned from a similarity search together
// with its relevance score. Produced transiently per query, never persisted.
type RetrievedChunk struct {
	Document Document
	Score    float32
}

// Source returns the chunk's source identifier, or "unknown" if the chunk
// carries no source metadata.
func (c RetrievedChunk) Source() string {
	if s, ok := c.Document.Metadata["source"]; ok && s != "" {
		return s
	}
	return "unknown"
}
