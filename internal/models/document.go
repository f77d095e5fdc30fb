package models

// Page is one page (or logical section) of text extracted from a source
// document, before chunking.
type Page struct {
	Content    string
	Source     string
	PageNumber int
}

// Chunk is a bounded window of a page's content, the unit of embedding
// and retrieval.
type Chunk struct {
	Content    string
	Source     string
	PageNumber int
	ChunkIndex int
}

// ChunkEmbedding pairs a chunk with its embedding vector. Created once at
// ingestion time and handed to the vector store.
type ChunkEmbedding struct {
	Chunk
	Embedding []float32
}

// SearchResult is a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk
	Similarity float32
}

// Provenance identifies where a retrieved chunk came from, for citation.
type Provenance struct {
	Source     string
	PageNumber int
}

// Answer is the generation output for one question plus the provenance of
// the chunks it was conditioned on.
type Answer struct {
	Content string
	Sources []Provenance
}
