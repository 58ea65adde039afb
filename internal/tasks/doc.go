// Package tasks orchestrates track resolution and playlist assembly with real-time progress reporting.
//
// # Core Operations
//
// Two engines cover the workflow:
//
//  1. [Resolver.Resolve] : free-text queries to concrete track selections
//     - Fans queries out over a bounded worker pool behind a rate limiter
//     - Scores each query's candidates with a deterministic [Policy]
//     - Captures per-query failures in the result instead of aborting the batch
//
//  2. [Assembler] : selections to a remote playlist
//     - [Assembler.CreateFromQueries] resolves first, then creates and fills
//     - [Assembler.CreateFromIDs] skips resolution and validates id shapes
//     - Playlist creation is all-or-nothing; individual adds are not
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Resolution Caching
//
// The optional [ResolutionCache] interface short-circuits repeat queries.
//
// Cache writes are silent (errors ignored) so persistence problems never disrupt resolution. A nil cache disables caching entirely.
package tasks
