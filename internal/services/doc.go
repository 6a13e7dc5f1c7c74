// Package services wraps the remote playback API behind the [Player]
// interface.
//
// Error contract: non-success statuses surface as [*APIError] carrying the
// status; transport and decode failures wrap [shared.ErrAPIRequest] so the
// two kinds stay distinguishable. The client applies a bounded request
// timeout and a client-side rate limit, and no retries.
package services
