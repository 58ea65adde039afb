// Package services defines the [Catalog] interface for the music catalog and implements it twice.
//
// # Catalog Interface
//
// Both clients normalize provider responses into [models.SearchCandidate], so resolution and assembly work uniformly regardless of which backend is active.
//
// # Data API Client
//
// [DataAPIClient] talks to the official Data API v3 with a bearer token from the OAuth device flow.
//
// Searches merge /search snippets with /videos statistics and contentDetails so candidates carry view counts, like counts and durations. Every call passes through a [rate.Limiter] because the official API is quota-metered; a quotaExceeded rejection maps to [shared.ErrQuotaExceeded] so callers can switch to the browser backend.
//
// # Music Web Client
//
// [MusicWebClient] posts to the music site's internal youtubei/v1 endpoints using an imported browser header set.
//
// Requests are signed with the SAPISIDHASH scheme derived from the session cookie. These calls do not count against API quota. Search result extraction is tolerant: the internal response shape shifts without notice, so missing branches yield fewer candidates rather than errors.
//
// # Error Handling
//
// Clients use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no usable session handle
//   - [shared.ErrQuotaExceeded] : official API daily quota exhausted
//   - [shared.ErrAuthRevoked] : service rejected the credential
//   - [shared.ErrAPIRequest] : HTTP request failed
package services
