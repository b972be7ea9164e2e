// Package docstore provides a document-database write stub.
//
// The application under test talks to a Writer. In tests, a Stub stands in
// for the real database: while installed every write succeeds and is kept
// in memory for inspection; once uninstalled writes fail with
// ErrNotInstalled so leaked writes outside the suite are visible.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getmockd/interceptd/internal/id"
	"github.com/getmockd/interceptd/internal/storage"
	"github.com/getmockd/interceptd/pkg/logging"
)

// ErrNotInstalled is returned by writes made outside the stub's lifecycle.
var ErrNotInstalled = errors.New("document write stub not installed")

// IDField is the document field carrying its id.
const IDField = "_id"

// InsertResult reports an accepted insert.
type InsertResult struct {
	InsertedID string
}

// UpdateResult reports an accepted update.
type UpdateResult struct {
	MatchedCount  int
	ModifiedCount int
	UpsertedID    string
}

// DeleteResult reports an accepted delete.
type DeleteResult struct {
	DeletedCount int
}

// Writer is the write side of a document database.
type Writer interface {
	InsertOne(ctx context.Context, collection string, doc map[string]any) (*InsertResult, error)
	UpdateOne(ctx context.Context, collection, id string, update map[string]any) (*UpdateResult, error)
	DeleteOne(ctx context.Context, collection, id string) (*DeleteResult, error)
}

// Write is one accepted write, in the order received.
type Write struct {
	Op         string
	Collection string
	ID         string
}

// Write operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Stub is a Writer that unconditionally reports success while installed.
type Stub struct {
	mu        sync.Mutex
	installed bool
	store     storage.DocumentStore
	writes    []Write
	log       *slog.Logger
}

// NewStub returns an uninstalled stub backed by an in-memory store.
func NewStub(logger *slog.Logger) *Stub {
	return &Stub{
		store: storage.NewInMemoryDocumentStore(),
		log:   logging.Component(logger, "docstore"),
	}
}

// Install starts accepting writes.
func (s *Stub) Install(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installed = true
	s.log.DebugContext(ctx, "write stub installed")
	return nil
}

// Uninstall stops accepting writes and discards what was written.
// Uninstalling twice is a no-op.
func (s *Stub) Uninstall(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.installed {
		return nil
	}
	s.installed = false
	s.store.Clear()
	s.log.DebugContext(ctx, "write stub uninstalled", "writes", len(s.writes))
	s.writes = nil
	return nil
}

// Installed reports whether the stub accepts writes.
func (s *Stub) Installed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installed
}

// InsertOne stores doc under its _id, generating one when missing.
func (s *Stub) InsertOne(ctx context.Context, collection string, doc map[string]any) (*InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.installed {
		return nil, fmt.Errorf("insert into %s: %w", collection, ErrNotInstalled)
	}

	docID, _ := doc[IDField].(string)
	if docID == "" {
		docID = id.Short()
	}
	data := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		data[k] = v
	}
	data[IDField] = docID

	s.store.Put(collection, docID, data)
	s.writes = append(s.writes, Write{Op: OpInsert, Collection: collection, ID: docID})
	return &InsertResult{InsertedID: docID}, nil
}

// UpdateOne shallow-merges update into the document, upserting when it
// does not exist.
func (s *Stub) UpdateOne(ctx context.Context, collection, docID string, update map[string]any) (*UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.installed {
		return nil, fmt.Errorf("update %s/%s: %w", collection, docID, ErrNotInstalled)
	}

	result := &UpdateResult{}
	data := map[string]any{IDField: docID}
	if existing := s.store.Get(collection, docID); existing != nil {
		data = existing.Data
		result.MatchedCount = 1
		result.ModifiedCount = 1
	} else {
		result.UpsertedID = docID
	}
	for k, v := range update {
		data[k] = v
	}

	s.store.Put(collection, docID, data)
	s.writes = append(s.writes, Write{Op: OpUpdate, Collection: collection, ID: docID})
	return result, nil
}

// DeleteOne removes the document. Deleting a missing document succeeds
// with a zero count.
func (s *Stub) DeleteOne(ctx context.Context, collection, docID string) (*DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.installed {
		return nil, fmt.Errorf("delete %s/%s: %w", collection, docID, ErrNotInstalled)
	}

	result := &DeleteResult{}
	if s.store.Delete(collection, docID) {
		result.DeletedCount = 1
	}
	s.writes = append(s.writes, Write{Op: OpDelete, Collection: collection, ID: docID})
	return result, nil
}

// Writes returns the accepted writes in order.
func (s *Stub) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Write(nil), s.writes...)
}

// Documents returns the current documents of a collection.
func (s *Stub) Documents(collection string) []map[string]any {
	docs := s.store.List(collection)
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		out[i] = d.Data
	}
	return out
}

var _ Writer = (*Stub)(nil)
