package query

import (
	"strings"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// hasEffectiveHit decides whether a retrieval result is actually usable.
// A non-empty result is enough for ordinary questions. Short token
// queries (acronyms, single technical terms) are high-ambiguity: embedding
// neighbors are often not true matches, so at least one document must
// literally contain the token, case-insensitively. Without that
// confirmation the whole result set is treated as a miss, which keeps a
// weakly related context block from producing a long "insufficient
// information" answer.
func hasEffectiveHit(question string, docs []domain.Document) bool {
	if len(docs) == 0 {
		return false
	}

	normalized := normalizeQuestion(question)
	if !isShortTokenQuery(normalized) {
		return true
	}

	token := strings.ToLower(normalized)
	for _, doc := range docs {
		if strings.Contains(strings.ToLower(doc.Text), token) {
			return true
		}
	}
	return false
}
