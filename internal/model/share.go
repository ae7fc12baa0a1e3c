package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// Share is a published snapshot of lyrics content under a globally
// unique extension. The snapshot is a copy taken at share time; later
// edits to the source document do not propagate.
type Share struct {
	Extension string        `json:"extension"`
	Username  string        `json:"-"`
	Content   LyricsContent `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

// CachedShare is the Redis representation of a share snapshot.
// Content is serialized to JSON for hash-field storage.
type CachedShare struct {
	Content   string `redis:"content"`
	CreatedAt string `redis:"created_at"` // Unix timestamp
}

// ToCachedShare converts a Share to its cache representation.
func (s *Share) ToCachedShare() (*CachedShare, error) {
	data, err := json.Marshal(s.Content)
	if err != nil {
		return nil, err
	}
	return &CachedShare{
		Content:   string(data),
		CreatedAt: formatUnix(s.CreatedAt),
	}, nil
}

// ToShare converts a cached snapshot back to a Share.
func (c *CachedShare) ToShare(extension string) (*Share, error) {
	share := &Share{Extension: extension}
	if err := json.Unmarshal([]byte(c.Content), &share.Content); err != nil {
		return nil, err
	}
	if t, ok := parseUnix(c.CreatedAt); ok {
		share.CreatedAt = t
	}
	return share, nil
}

func formatUnix(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

func parseUnix(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}
