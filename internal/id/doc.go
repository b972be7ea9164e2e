// Package id provides unique identifier generation utilities.
//
// This is the canonical source for ID generation across the codebase:
//
//   - UUID: random UUID v4 for fixtures registered without an id
//   - Sortable: time-ordered UUID v7 for request log entries
//   - Short: 16-character hex IDs for document ids handed out by the write stub
//
// All functions are backed by github.com/google/uuid.
package id
