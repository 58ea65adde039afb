// Package models defines the data model for track resolution and playlist assembly.
//
// The package contains two categories of types:
//
// 1. Domain records: immutable views of catalog data and engine results
//   - [SearchCandidate] : One catalog search hit with the metadata the resolver scores on
//   - [ResolutionResult] : A query paired with its selected candidate (or the reason none was chosen)
//   - [PlaylistOutcome] : Terminal report of one playlist-creation call
//
// 2. Persistent entities: database-backed models with full lifecycle management
//   - [CachedResolution] : A memoized query → candidate selection
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
