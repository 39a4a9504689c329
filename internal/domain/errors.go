package domain

import "errors"

var (
	// ErrKnowledgeBaseNotFound signals a missing knowledge base.
	ErrKnowledgeBaseNotFound = errors.New("knowledge base not found")
	// ErrKnowledgeBaseExists signals a duplicate knowledge base name.
	ErrKnowledgeBaseExists = errors.New("knowledge base already exists")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrQueryFailed signals that answer synthesis failed after successful retrieval.
	ErrQueryFailed = errors.New("knowledge base query failed")
	// ErrChatProviderError signals a chat completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrStructuredOutputFailed signals that the model never produced parseable JSON.
	ErrStructuredOutputFailed = errors.New("structured output failed")
	// ErrEmptyContent signals blank input where text is required.
	ErrEmptyContent = errors.New("empty content")
)
