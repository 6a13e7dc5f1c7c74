// package models defines the data model for the playback controller
package models

import (
	"strings"
	"time"
)

// Playlist represents a playlist owned or followed by the user.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
	URI         string `json:"uri"`
}

// Artist represents a single credited artist on a track.
type Artist struct {
	Name string `json:"name"`
}

// Album carries the album fields the player needs (name and artwork).
type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Image represents a remote image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Track represents the currently playing (or queued) track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int64    `json:"duration_ms"`
}

// ArtistNames joins the credited artists in order.
func (t Track) ArtistNames() string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// ArtworkURL returns the first album image URL, or "" when none exists.
func (t Track) ArtworkURL() string {
	if len(t.Album.Images) == 0 {
		return ""
	}
	return t.Album.Images[0].URL
}

// PlayerState is the playback snapshot returned by the remote player.
//
// It is replaced wholesale on every successful poll so the track and
// progress fields never mix two different polls.
type PlayerState struct {
	IsPlaying  bool   `json:"is_playing"`
	Item       *Track `json:"item"`
	ProgressMS int64  `json:"progress_ms"`
}

// TrackID returns the identity of the current track, or "" when nothing is
// playing. Used to detect track changes between snapshots.
func (p PlayerState) TrackID() string {
	if p.Item == nil {
		return ""
	}
	if p.Item.ID != "" {
		return p.Item.ID
	}
	return p.Item.Name
}

// PlayEntry is one recorded play in the local history database.
type PlayEntry struct {
	ID         string    `json:"id"`
	TrackID    string    `json:"track_id"`
	TrackName  string    `json:"track_name"`
	Artists    string    `json:"artists"`
	DurationMS int64     `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
}
