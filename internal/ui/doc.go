// Package ui is the interactive session controller.
//
// The [Model] runs under Bubble Tea's single-goroutine event loop: every
// state mutation happens inside Update, network work runs as commands that
// report back as messages, and a once-per-second tick drives the remote
// status poll. A skip or play command re-fetches the snapshot immediately
// and stamps the poll deadline, so the next timer tick inside the same
// interval is a no-op. Poll failures keep the previous snapshot
// (stale-but-available); a result that arrives after quit is discarded by
// the runtime.
package ui
