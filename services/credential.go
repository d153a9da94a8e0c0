package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"quickcompare/utils"
)

// ErrFetchInProgress is returned when a credential fetch is already
// running; the caller treats it like any other fetch failure and the
// user retries.
var ErrFetchInProgress = errors.New("credential: fetch already in progress")

// KeyFetcher obtains the raw encoded credential from the backend.
type KeyFetcher interface {
	FetchEncodedKey(ctx context.Context) (string, error)
}

// DecodeKey decodes the backend's obfuscated credential. The server
// base64-encodes the key once per hour of the day in 12-hour form, so
// the client must decode it hour times (1–12). Before each pass the
// input is sanitized: wrapping quotes stripped, every non-base64 rune
// dropped, and the result padded with '=' to a multiple of 4.
//
// The hour is a parameter, not read from the clock here, so callers own
// the wall-clock coupling (and tests don't have one). The scheme is
// obfuscation only; it breaks at hour boundaries whenever the server's
// clock disagrees with the client's.
func DecodeKey(ciphertext string, hour int) (string, error) {
	if hour < 1 || hour > 12 {
		return "", fmt.Errorf("credential: hour %d outside 1-12", hour)
	}

	current := ciphertext
	for pass := 1; pass <= hour; pass++ {
		decoded, err := base64.StdEncoding.DecodeString(sanitizeBase64(current))
		if err != nil {
			return "", fmt.Errorf("credential: decode pass %d/%d: %w", pass, hour, err)
		}
		current = string(decoded)
	}
	return current, nil
}

// Hour12 converts a wall-clock time to 12-hour form (1–12).
func Hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return h
}

func sanitizeBase64(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9',
			r == '+', r == '/', r == '=':
			b.WriteRune(r)
		}
	}

	out := b.String()
	if rem := len(out) % 4; rem != 0 {
		out += strings.Repeat("=", 4-rem)
	}
	return out
}

// CredentialManager caches the geocoding credential in memory for the
// process lifetime. It is never persisted. A guard flag keeps a second
// caller from issuing a duplicate fetch while one is in flight.
type CredentialManager struct {
	fetcher KeyFetcher
	logger  *utils.Logger
	now     func() time.Time

	mu       sync.Mutex
	key      string
	fetching bool
}

// NewCredentialManager creates a CredentialManager. now may be nil, in
// which case time.Now is used.
func NewCredentialManager(fetcher KeyFetcher, logger *utils.Logger, now func() time.Time) *CredentialManager {
	if now == nil {
		now = time.Now
	}
	return &CredentialManager{fetcher: fetcher, logger: logger, now: now}
}

// Ensure returns the cached credential, fetching and decoding it first
// if this process has not obtained one yet.
func (m *CredentialManager) Ensure(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.key != "" {
		key := m.key
		m.mu.Unlock()
		return key, nil
	}
	if m.fetching {
		m.mu.Unlock()
		return "", ErrFetchInProgress
	}
	m.fetching = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.fetching = false
		m.mu.Unlock()
	}()

	raw, err := m.fetcher.FetchEncodedKey(ctx)
	if err != nil {
		m.logger.Error("[credential] fetch failed: %v", err)
		return "", fmt.Errorf("credential: fetch: %w", err)
	}

	key, err := DecodeKey(raw, Hour12(m.now()))
	if err != nil {
		m.logger.Error("[credential] %v", err)
		return "", err
	}

	m.mu.Lock()
	m.key = key
	m.mu.Unlock()
	m.logger.Debug("[credential] key obtained and cached for process lifetime")
	return key, nil
}

// Cached returns the in-memory credential, if any, without fetching.
func (m *CredentialManager) Cached() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key, m.key != ""
}
