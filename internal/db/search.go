package db

// KNNQuery describes one vector similarity search.
type KNNQuery struct {
	IndexName string
	Vector    []float32
	K         int
	// TagFilter restricts candidates to hashes whose Field holds one of
	// Values. Empty Values means no pre-filter.
	TagFilter    TagFilter
	ReturnFields []string
}

// TagFilter is an OR-match over a single tag field.
type TagFilter struct {
	Field  string
	Values []string
}

// SearchResult is the parsed FT.SEARCH reply.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one matched hash. Score is cosine similarity in [0,1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
