package storage

import "time"

// Document is one stored record.
type Document struct {
	ID         string
	Collection string
	Data       map[string]any
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DocumentStore defines the interface for storing and retrieving documents
// grouped by collection.
type DocumentStore interface {
	// Put inserts or replaces a document. Replacing bumps its version.
	Put(collection, id string, data map[string]any) *Document

	// Get retrieves a document. Returns nil if not found.
	Get(collection, id string) *Document

	// Delete removes a document. Returns true if deleted, false if not found.
	Delete(collection, id string) bool

	// List returns the documents of a collection in insertion order.
	List(collection string) []*Document

	// Count returns the number of documents across all collections.
	Count() int

	// Clear removes all documents.
	Clear()
}
