package cache

import (
	"time"
)

// Entry is one cached response: the raw, unparsed body stored under
// (Silo, Key) until ExpiresAt.
type Entry struct {
	Silo string
	Key  string

	// Value is the response body exactly as received.
	Value []byte

	// ExpiresAt is the absolute instant after which the entry is absent.
	ExpiresAt time.Time
}

// NewEntry builds an entry whose expiry is ttl after now.
func NewEntry(silo, key string, value []byte, ttl time.Duration, now time.Time) Entry {
	return Entry{
		Silo:      silo,
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(ttl),
	}
}

// ExpiredAt reports whether the entry is no longer live at now.
func (e Entry) ExpiredAt(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// TTLAt returns the time remaining at now.
// Returns 0 if already expired.
func (e Entry) TTLAt(now time.Time) time.Duration {
	ttl := e.ExpiresAt.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}
