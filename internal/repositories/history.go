package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spotterm/spotterm/internal/models"
	"github.com/spotterm/spotterm/internal/shared"
)

// HistoryRepository records and lists observed plays.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a repository backed by the given database.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record inserts a play entry. A missing ID gets a fresh uuid and a zero
// StartedAt defaults to now.
func (r *HistoryRepository) Record(entry models.PlayEntry) error {
	if entry.TrackName == "" {
		return fmt.Errorf("%w: play entry requires a track name", shared.ErrInvalidInput)
	}
	if entry.ID == "" {
		entry.ID = shared.GenerateID()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(
		"INSERT INTO play_history (id, track_id, track_name, artists, duration_ms, started_at) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ID, entry.TrackID, entry.TrackName, entry.Artists, entry.DurationMS, entry.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}

	return nil
}

// Recent returns the most recent plays, newest first, up to limit (0 for a
// default of 20).
func (r *HistoryRepository) Recent(limit int) ([]models.PlayEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		"SELECT id, track_id, track_name, artists, duration_ms, started_at FROM play_history ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query play history: %w", err)
	}
	defer rows.Close()

	var entries []models.PlayEntry
	for rows.Next() {
		var entry models.PlayEntry
		if err := rows.Scan(&entry.ID, &entry.TrackID, &entry.TrackName, &entry.Artists, &entry.DurationMS, &entry.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read play history: %w", err)
	}

	return entries, nil
}

// Clear removes all recorded plays.
func (r *HistoryRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM play_history"); err != nil {
		return fmt.Errorf("failed to clear play history: %w", err)
	}
	return nil
}
