package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TokenRecord is the persisted credential record. It mirrors the provider's
// token response JSON and is the only artifact the auth package writes.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Merge combines a refresh response with the previously persisted record,
// field by field: a field present in next wins, a field the provider
// omitted keeps its prior value. In particular the provider is allowed to
// omit refresh_token on refresh, and the prior one must survive.
func Merge(prev, next TokenRecord) TokenRecord {
	merged := prev

	if next.AccessToken != "" {
		merged.AccessToken = next.AccessToken
	}
	if next.TokenType != "" {
		merged.TokenType = next.TokenType
	}
	if next.ExpiresIn != 0 {
		merged.ExpiresIn = next.ExpiresIn
	}
	if next.RefreshToken != "" {
		merged.RefreshToken = next.RefreshToken
	}

	return merged
}

// Store reads and writes the single credential record at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the record at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the persisted record.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted record. A missing file is not an error; it
// returns (nil, nil) so callers can distinguish "no record yet" from a
// corrupt or unreadable one.
func (s *Store) Load() (*TokenRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var record TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &record, nil
}

// Save persists the record atomically: it writes a temp file in the same
// directory and renames it over the old one, so a crash mid-write leaves
// either the previous record or the new one, never a torn file.
func (s *Store) Save(record TokenRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".token-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set token file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}
