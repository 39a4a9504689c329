package knowledge

import (
	"strconv"
	"time"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Hash field names for knowledge-base records.
const (
	fieldID          = "id"
	fieldName        = "name"
	fieldDescription = "description"
	fieldCreatedAt   = "created_at"
)

func toFields(kb domain.KnowledgeBase) map[string]string {
	return map[string]string{
		fieldID:            kb.ID,
		fieldName:          kb.Name,
		fieldDescription:   kb.Description,
		fieldDocumentCount: strconv.Itoa(kb.DocumentCount),
		fieldQuestionCount: strconv.Itoa(kb.QuestionCount),
		fieldCreatedAt:     strconv.FormatInt(kb.CreatedAt.Unix(), 10),
	}
}

func fromFields(m map[string]string) domain.KnowledgeBase {
	kb := domain.KnowledgeBase{
		ID:          m[fieldID],
		Name:        m[fieldName],
		Description: m[fieldDescription],
	}
	kb.DocumentCount, _ = strconv.Atoi(m[fieldDocumentCount])
	kb.QuestionCount, _ = strconv.Atoi(m[fieldQuestionCount])
	if ts, err := strconv.ParseInt(m[fieldCreatedAt], 10, 64); err == nil {
		kb.CreatedAt = time.Unix(ts, 0).UTC()
	}
	return kb
}
