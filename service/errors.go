package service

import "errors"

// Pipeline failure classes. Embedding and generation failures carry
// their own sentinels (model.ErrEmbeddingService, agent.ErrGeneration)
// and are additionally wrapped with the stage that hit them.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrProvisioning   = errors.New("collection provisioning")
	ErrRetrieval      = errors.New("retrieval")
	ErrIngestion      = errors.New("ingestion")
)
