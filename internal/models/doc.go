// Package models contains the domain types shared by the auth, services,
// repositories, and ui packages.
//
// [PlayerState] is the playback snapshot; its zero value is the documented
// "nothing playing" state (the remote returns 204 No Content for it).
// [PlayEntry] is the persisted play-history record.
package models
