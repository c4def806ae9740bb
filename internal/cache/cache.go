// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// DefaultTTL is the validity window, in seconds, of entries written by a
// Store created without WithTTL.
const DefaultTTL uint64 = 3600

// ErrInvalidJSON is returned when a value handed to the store is not a JSON
// document.
var ErrInvalidJSON = errors.New("value is not valid JSON")

// Store reads and writes cache entries beneath a single directory, one file
// per Type.
type Store struct {
	dir string
	ttl uint64
	now func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithTTL sets the TTL, in seconds, stamped onto entries the store writes.
// Existing entries keep the TTL they were written with.
func WithTTL(seconds uint64) Option {
	return func(s *Store) {
		s.ttl = seconds
	}
}

// WithClock replaces the wall clock used for timestamps and validity checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store rooted at dir. The directory is created lazily by the
// first write.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir: dir,
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir is the directory the store keeps its files in.
func (s *Store) Dir() string {
	return s.dir
}

// TTL is the TTL, in seconds, applied to new entries.
func (s *Store) TTL() uint64 {
	return s.ttl
}

// Path returns the file backing t.
func (s *Store) Path(t Type) string {
	return filepath.Join(s.dir, t.Filename())
}

// Get returns the cached value for t if it exists and has not expired. An
// expired entry is removed as a side effect. Any failure to read or decode
// the file is reported as a miss.
func (s *Store) Get(t Type) (json.RawMessage, bool) {
	entry, ok := s.GetEntry(t)
	if !ok {
		return nil, false
	}

	if !entry.IsValid(s.now()) {
		// Another process may have removed it first; either way it's gone.
		if err := os.Remove(s.Path(t)); err != nil {
			log.WithError(err).Debugf("failed to evict expired %s cache", t)
		} else {
			log.Debugf("evicted expired %s cache", t)
		}
		return nil, false
	}

	log.Debugf("cache hit: %s", s.Path(t))
	return entry.Data, true
}

// GetEntry returns the raw entry for t, valid or not, without evicting it.
func (s *Store) GetEntry(t Type) (*Entry, bool) {
	b, err := os.ReadFile(s.Path(t))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Debugf("unreadable %s cache", t)
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(b, &entry); err != nil {
		log.WithError(err).Debugf("malformed %s cache", t)
		return nil, false
	}
	return &entry, true
}

// Set replaces whatever is cached for t with data, stamped with the current
// time and the store's TTL.
func (s *Store) Set(t Type, data json.RawMessage) error {
	if len(bytes.TrimSpace(data)) == 0 {
		data = json.RawMessage("null")
	}
	if !json.Valid(data) {
		return fmt.Errorf("failed to write %s cache: %w", t, ErrInvalidJSON)
	}

	entry := Entry{
		Timestamp:  epoch(s.now()),
		TTLSeconds: s.ttl,
		Data:       data,
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode %s cache: %w", t, err)
	}
	b = pretty.Pretty(b)

	if err := os.MkdirAll(s.dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(s.Path(t), b, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write %s cache: %w", t, err)
	}

	log.Debugf("cache write: %s (ttl=%ds)", s.Path(t), s.ttl)
	return nil
}

// IsValid reports whether Get would return a value for t.
func (s *Store) IsValid(t Type) bool {
	_, ok := s.Get(t)
	return ok
}

// GetKeyed looks key up inside the object cached for t. Expiry applies to the
// type as a whole, not to individual keys.
func (s *Store) GetKeyed(t Type, key string) (json.RawMessage, bool) {
	data, ok := s.Get(t)
	if !ok {
		return nil, false
	}
	return lookupKey(data, key)
}

// SetKeyed stores value under key inside the object cached for t, keeping
// the other keys. The whole entry is rewritten, so this restarts the TTL of
// every key under t.
func (s *Store) SetKeyed(t Type, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("failed to write %s cache key %q: %w", t, key, ErrInvalidJSON)
	}
	current, _ := s.Get(t)
	return s.Set(t, withKey(current, key, value))
}

// ClearType removes the file backing t. A missing file is not an error.
func (s *Store) ClearType(t Type) error {
	if err := os.Remove(s.Path(t)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear %s cache: %w", t, err)
	}
	return nil
}

// ClearAll removes every cache file, continuing past failures.
func (s *Store) ClearAll() error {
	var errs []error
	for _, t := range allTypes {
		if err := s.ClearType(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// lookupKey returns the member named key of the JSON object obj.
func lookupKey(obj json.RawMessage, key string) (json.RawMessage, bool) {
	parsed := gjson.ParseBytes(obj)
	if !parsed.IsObject() {
		return nil, false
	}

	var (
		value json.RawMessage
		found bool
	)
	parsed.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			value = json.RawMessage(v.Raw)
			found = true
			return false
		}
		return true
	})
	return value, found
}

// withKey returns obj with key set to value. Member order is preserved and a
// new key is appended. Anything that is not an object is replaced by a fresh
// object holding only key.
func withKey(obj json.RawMessage, key string, value json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	n := 0
	write := func(k string, raw []byte) {
		if n > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(raw)
		n++
	}

	buf.WriteByte('{')
	replaced := false
	if parsed := gjson.ParseBytes(obj); parsed.IsObject() {
		parsed.ForEach(func(k, v gjson.Result) bool {
			if k.String() == key {
				write(key, value)
				replaced = true
			} else {
				write(k.String(), []byte(v.Raw))
			}
			return true
		})
	}
	if !replaced {
		write(key, value)
	}
	buf.WriteByte('}')

	return buf.Bytes()
}
