package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned by Lookup when a source has never been built.
var ErrNotFound = errors.New("page not in cache")

// PageRecord is the cached build state of one source file.
type PageRecord struct {
	Source       string // content-relative path of the Markdown file
	ContentHash  string
	TemplateHash string
	Dest         string
	Title        string
	BuiltAt      time.Time
}

// Fresh reports whether a page built from content and template with the
// given hashes would be identical to the cached one.
func (r PageRecord) Fresh(contentHash, templateHash string) bool {
	return r.ContentHash == contentHash && r.TemplateHash == templateHash
}

// PageCache persists per-page build state between runs.
type PageCache interface {
	// Lookup returns the record for source or ErrNotFound.
	Lookup(ctx context.Context, source string) (PageRecord, error)

	// SavePage upserts a record.
	SavePage(ctx context.Context, rec PageRecord) error

	// Prune deletes every record whose source is not in keep and returns
	// the number of deleted rows.
	Prune(ctx context.Context, keep []string) (int, error)

	Close() error
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
