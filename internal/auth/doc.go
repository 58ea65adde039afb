// Package auth implements the session manager for the two interchangeable
// credential backends: an OAuth device-code flow against the quota-limited
// official API, and an imported browser session for the quota-free web
// endpoints.
//
// The [Manager] owns the active credential [Bundle] and its [State], persists
// it through the [Store], and hands out validated [SessionHandle] values to
// catalog clients. Callers never branch on backend identity except during
// initial setup.
package auth
