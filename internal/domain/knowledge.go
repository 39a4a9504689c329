package domain

import "time"

// KeyPrefix namespaces every Redis key written by this service.
const KeyPrefix = "ragdex:"

// KnowledgeBase is a named collection of ingested documents that queries
// can be scoped to.
type KnowledgeBase struct {
	ID            string
	Name          string
	Description   string
	DocumentCount int
	QuestionCount int
	CreatedAt     time.Time
}
