// Package auth owns the credential lifecycle for the Spotify Web API.
//
// [Manager.Token] is the single entry point: it refreshes the persisted
// [TokenRecord] when one with a refresh token exists, and demotes to the
// full authorization-code flow on any refresh failure. The full flow is the
// one blocking phase of the program (see [Manager.Authorize]); it completes
// before the interactive session starts, so the listener never shares state
// with the session loop.
//
// [Merge] is the explicit refresh merge rule, and [Store] persists the
// record atomically. Both are kept as standalone pieces so their invariants
// (refresh-token preservation, no torn writes) are testable in isolation.
package auth
