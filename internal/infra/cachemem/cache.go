// Package cachemem is an in-process signature index with optional expiry.
package cachemem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"signet/internal/usecase"
)

type Index struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	principalID string
	expiresAt   time.Time
	hasExpiry   bool
}

// New returns an index whose entries expire after ttl; ttl <= 0 keeps them
// forever.
func New(ttl time.Duration) *Index {
	return &Index{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *Index) Put(ctx context.Context, sig []byte, principalID string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{principalID: principalID}
	if c.ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.entries[signatureKey(sig)] = entry
	return nil
}

func (c *Index) Lookup(ctx context.Context, sig []byte) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := signatureKey(sig)
	entry, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if entry.hasExpiry && c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false, nil
	}
	return entry.principalID, true, nil
}

func signatureKey(sig []byte) string {
	sum := sha256.Sum256(sig)
	return hex.EncodeToString(sum[:])
}

var _ usecase.SignatureIndex = (*Index)(nil)
