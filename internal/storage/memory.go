package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/mohae/deepcopy"
)

// InMemoryDocumentStore is a thread-safe in-memory implementation of DocumentStore.
type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]*Document
	seq  map[*Document]uint64
	next uint64
	now  func() time.Time
}

// NewInMemoryDocumentStore creates a new InMemoryDocumentStore.
func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		docs: make(map[string]map[string]*Document),
		seq:  make(map[*Document]uint64),
		now:  time.Now,
	}
}

// Put inserts or replaces a document.
func (s *InMemoryDocumentStore) Put(collection, id string, data map[string]any) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.docs[collection]
	if !ok {
		coll = make(map[string]*Document)
		s.docs[collection] = coll
	}

	now := s.now()
	if existing, ok := coll[id]; ok {
		existing.Data = cloneData(data)
		existing.Version++
		existing.UpdatedAt = now
		return copyDocument(existing)
	}

	doc := &Document{
		ID:         id,
		Collection: collection,
		Data:       cloneData(data),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	coll[id] = doc
	s.next++
	s.seq[doc] = s.next
	return copyDocument(doc)
}

// Get retrieves a document. Returns nil if not found.
func (s *InMemoryDocumentStore) Get(collection, id string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.docs[collection][id]; ok {
		return copyDocument(doc)
	}
	return nil
}

// Delete removes a document. Returns true if deleted, false if not found.
func (s *InMemoryDocumentStore) Delete(collection, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return false
	}
	delete(s.docs[collection], id)
	delete(s.seq, doc)
	return true
}

// List returns the documents of a collection in insertion order.
func (s *InMemoryDocumentStore) List(collection string) []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.docs[collection]
	docs := make([]*Document, 0, len(coll))
	for _, doc := range coll {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return s.seq[docs[i]] < s.seq[docs[j]]
	})

	result := make([]*Document, len(docs))
	for i, doc := range docs {
		result[i] = copyDocument(doc)
	}
	return result
}

// Count returns the number of documents across all collections.
func (s *InMemoryDocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, coll := range s.docs {
		n += len(coll)
	}
	return n
}

// Clear removes all documents.
func (s *InMemoryDocumentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]map[string]*Document)
	s.seq = make(map[*Document]uint64)
}

func copyDocument(doc *Document) *Document {
	c := *doc
	c.Data = cloneData(doc.Data)
	return &c
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	return deepcopy.Copy(data).(map[string]any)
}

// Ensure InMemoryDocumentStore implements DocumentStore.
var _ DocumentStore = (*InMemoryDocumentStore)(nil)
