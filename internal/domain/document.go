package domain

// Document is one retrieved chunk of knowledge-base text.
// Score is the similarity score assigned by the vector search, in [0,1].
type Document struct {
	ID              string
	DocumentID      string
	KnowledgeBaseID string
	Text            string
	Source          string
	Score           float64
}

// Chunk is a unit of ingested text with its embedding, ready for indexing.
type Chunk struct {
	ID              string
	DocumentID      string
	KnowledgeBaseID string
	Seq             int
	Text            string
	Source          string
	Vector          []float32
}
