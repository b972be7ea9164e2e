// Package storage provides document storage abstractions and implementations.
//
// It backs the document-database write stub: writes accepted by the stub are
// kept here so tests can inspect what the application under test tried to
// persist.
//
// Key types:
//
//   - DocumentStore: Interface defining the contract for document storage
//   - InMemoryDocumentStore: Thread-safe in-memory implementation
//
// Stored data is deep-copied on the way in and out, so callers never share
// maps with the store.
package storage
