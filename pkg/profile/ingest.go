package profile

import "fmt"

// Repository is the write contract the ingestor needs from profile storage.
// Stored documents are raw, possibly-inheriting JSON; no inheritance logic
// lives behind this interface.
type Repository interface {
	Put(category Category, name string, data []byte) error
}

// Ingestor accepts uploaded configuration documents.
//
// Ingestion validates by running full resolution and metadata injection so
// bad profiles are rejected synchronously and never reach the scheduler,
// then persists the raw pre-resolution document. Resolution re-runs at
// slice time, so later edits to a base profile take effect without
// re-uploading dependents.
type Ingestor struct {
	resolver *Resolver
	repo     Repository
}

// NewIngestor returns an ingestor using the given resolver and repository.
func NewIngestor(resolver *Resolver, repo Repository) *Ingestor {
	return &Ingestor{resolver: resolver, repo: repo}
}

// Ingest validates and persists an uploaded document. It returns the fully
// resolved, metadata-injected form the scheduler would produce at slice
// time, for callers that want to report it.
func (i *Ingestor) Ingest(category Category, name string, raw []byte) (*Document, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}

	resolved, err := i.resolver.Resolve(category, doc)
	if err != nil {
		return nil, err
	}
	final := InjectMetadata(category, resolved)

	if err := i.repo.Put(category, name, raw); err != nil {
		return nil, fmt.Errorf("persist %s/%s: %w", category, name, err)
	}

	return final, nil
}
