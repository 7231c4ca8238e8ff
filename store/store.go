// Package store implements the medicine-content data store.
//
// Two implementations are provided: PostgresStore for the catalog database
// and MemoryStore for tests and dry runs. Both decode content columns
// through the declared field schema: scalar columns as strings, list columns
// as []string or []map[string]any.
package store

import "github.com/dawalabs/medglot"

// Store is an alias to the main package interface for convenience.
type Store = medglot.Store

// ErrNotFound is an alias to the main package sentinel.
var ErrNotFound = medglot.ErrNotFound
