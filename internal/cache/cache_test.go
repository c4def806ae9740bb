// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a settable time source for tests.
type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Unix(1_700_000_000, 0)}
}

func newStore(t *testing.T, opts ...Option) (*Store, *clock) {
	t.Helper()
	c := newClock()
	return New(t.TempDir(), append([]Option{WithClock(c.Now)}, opts...)...), c
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"object", `{"nodes":[{"id":"t1","name":"Engineering","key":"ENG"}]}`},
		{"array", `[1,"two",{"three":3.5},null,true]`},
		{"string", `"hello"`},
		{"number", `42`},
		{"null", `null`},
		{"nested ordered keys", `{"z":1,"a":{"y":[],"b":{}},"m":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newStore(t)
			require.NoError(t, s.Set(Teams, json.RawMessage(tt.data)))

			got, ok := s.Get(Teams)
			require.True(t, ok)
			assert.JSONEq(t, tt.data, string(got))
		})
	}
}

func TestStore_SetPreservesKeyOrder(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Set(Users, json.RawMessage(`{"zeta":1,"alpha":2}`)))

	got, ok := s.Get(Users)
	require.True(t, ok)

	var compact bytes.Buffer
	require.NoError(t, json.Compact(&compact, got))
	assert.Equal(t, `{"zeta":1,"alpha":2}`, compact.String())
}

func TestStore_SetWritesPrettyEntry(t *testing.T) {
	s, c := newStore(t, WithTTL(120))
	require.NoError(t, s.Set(Labels, json.RawMessage(`{"a":1}`)))

	b, err := os.ReadFile(filepath.Join(s.Dir(), "labels.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n  \"timestamp\": ")

	var entry Entry
	require.NoError(t, json.Unmarshal(b, &entry))
	assert.Equal(t, uint64(c.Now().Unix()), entry.Timestamp)
	assert.Equal(t, uint64(120), entry.TTLSeconds)
	assert.JSONEq(t, `{"a":1}`, string(entry.Data))

	info, err := os.Stat(s.Path(Labels))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_SetOverwrites(t *testing.T) {
	s, c := newStore(t)
	require.NoError(t, s.Set(Teams, json.RawMessage(`{"v":1}`)))
	c.Advance(10 * time.Second)
	require.NoError(t, s.Set(Teams, json.RawMessage(`{"w":2}`)))

	got, ok := s.Get(Teams)
	require.True(t, ok)
	assert.JSONEq(t, `{"w":2}`, string(got))

	entry, ok := s.GetEntry(Teams)
	require.True(t, ok)
	assert.Equal(t, uint64(c.Now().Unix()), entry.Timestamp)
}

func TestStore_SetRejectsInvalidJSON(t *testing.T) {
	s, _ := newStore(t)
	err := s.Set(Teams, json.RawMessage(`{"broken":`))
	require.ErrorIs(t, err, ErrInvalidJSON)

	_, err = os.Stat(s.Path(Teams))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_SetFailsOnUnwritableDir(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	// The cache dir would have to be created beneath a regular file.
	s := New(filepath.Join(blocker, "cache"))
	err := s.Set(Teams, json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create cache directory")
}

func TestStore_GetMissesSilently(t *testing.T) {
	s, _ := newStore(t)

	_, ok := s.Get(Teams)
	assert.False(t, ok, "missing file")

	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(s.Path(Users), []byte("not json"), 0o600))
	_, ok = s.Get(Users)
	assert.False(t, ok, "malformed file")

	// A malformed file is a miss, not an expired entry, so it stays put.
	_, err := os.Stat(s.Path(Users))
	assert.NoError(t, err)

	require.NoError(t, os.Mkdir(s.Path(Labels), 0o755))
	_, ok = s.Get(Labels)
	assert.False(t, ok, "unreadable path")
}

func TestStore_GetEvictsExpired(t *testing.T) {
	s, c := newStore(t, WithTTL(1))
	require.NoError(t, s.Set(Teams, json.RawMessage(`{"nodes":[]}`)))

	c.Advance(2 * time.Second)

	_, ok := s.Get(Teams)
	assert.False(t, ok)

	_, err := os.Stat(s.Path(Teams))
	assert.True(t, os.IsNotExist(err), "expired file should be removed")
}

func TestStore_GetEvictsExpired_RealClock(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps for two seconds")
	}

	s := New(t.TempDir(), WithTTL(1))
	require.NoError(t, s.Set(Statuses, json.RawMessage(`{}`)))

	time.Sleep(2 * time.Second)

	_, ok := s.Get(Statuses)
	assert.False(t, ok)
	_, err := os.Stat(s.Path(Statuses))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_GetEntryDoesNotEvict(t *testing.T) {
	s, c := newStore(t, WithTTL(5))
	require.NoError(t, s.Set(Users, json.RawMessage(`[1,2]`)))
	c.Advance(time.Minute)

	entry, ok := s.GetEntry(Users)
	require.True(t, ok)
	assert.False(t, entry.IsValid(c.Now()))

	_, err := os.Stat(s.Path(Users))
	assert.NoError(t, err)
}

func TestStore_ExistingEntriesKeepTheirTTL(t *testing.T) {
	dir := t.TempDir()
	c := newClock()

	long := New(dir, WithClock(c.Now), WithTTL(3600))
	require.NoError(t, long.Set(Teams, json.RawMessage(`{}`)))

	// A store configured with a shorter TTL still honours the stored one.
	short := New(dir, WithClock(c.Now), WithTTL(1))
	c.Advance(10 * time.Minute)

	assert.True(t, short.IsValid(Teams))
}

func TestStore_IsValid(t *testing.T) {
	s, c := newStore(t, WithTTL(60))
	assert.False(t, s.IsValid(Teams))

	require.NoError(t, s.Set(Teams, json.RawMessage(`{}`)))
	assert.True(t, s.IsValid(Teams))

	c.Advance(60 * time.Second)
	assert.False(t, s.IsValid(Teams))
}

func TestStore_ClearType(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Set(Teams, json.RawMessage(`{}`)))
	require.NoError(t, s.Set(Users, json.RawMessage(`{}`)))

	require.NoError(t, s.ClearType(Teams))
	assert.False(t, s.IsValid(Teams))
	assert.True(t, s.IsValid(Users), "other types are untouched")

	// Idempotent.
	require.NoError(t, s.ClearType(Teams))
}

func TestStore_ClearAll(t *testing.T) {
	s, _ := newStore(t)
	for _, typ := range AllTypes() {
		require.NoError(t, s.Set(typ, json.RawMessage(`{}`)))
	}

	require.NoError(t, s.ClearAll())
	for _, typ := range AllTypes() {
		_, err := os.Stat(s.Path(typ))
		assert.True(t, os.IsNotExist(err), typ.String())
	}

	// Nothing left to clear, still fine.
	require.NoError(t, s.ClearAll())
}

func TestStore_Keyed(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.SetKeyed(Statuses, "team-1", json.RawMessage(`[{"name":"Todo"}]`)))
	require.NoError(t, s.SetKeyed(Statuses, "team-2", json.RawMessage(`[{"name":"Done"}]`)))

	got, ok := s.GetKeyed(Statuses, "team-1")
	require.True(t, ok)
	assert.JSONEq(t, `[{"name":"Todo"}]`, string(got))

	got, ok = s.GetKeyed(Statuses, "team-2")
	require.True(t, ok)
	assert.JSONEq(t, `[{"name":"Done"}]`, string(got))

	_, ok = s.GetKeyed(Statuses, "team-3")
	assert.False(t, ok, "never written")

	// Overwrite keeps the other key.
	require.NoError(t, s.SetKeyed(Statuses, "team-1", json.RawMessage(`[]`)))
	got, ok = s.GetKeyed(Statuses, "team-1")
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(got))

	whole, ok := s.Get(Statuses)
	require.True(t, ok)
	assert.JSONEq(t, `{"team-1":[],"team-2":[{"name":"Done"}]}`, string(whole))
}

func TestStore_KeyedSpecialCharacters(t *testing.T) {
	s, _ := newStore(t)
	key := `we.ird*key?"with"\quotes`

	require.NoError(t, s.SetKeyed(Labels, key, json.RawMessage(`{"x":1}`)))

	got, ok := s.GetKeyed(Labels, key)
	require.True(t, ok)
	assert.JSONEq(t, `{"x":1}`, string(got))

	_, ok = s.GetKeyed(Labels, "we")
	assert.False(t, ok)
}

func TestStore_GetKeyedOnNonObject(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Set(Users, json.RawMessage(`[1,2,3]`)))

	_, ok := s.GetKeyed(Users, "0")
	assert.False(t, ok)
}

func TestStore_SetKeyedReplacesNonObject(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Set(Users, json.RawMessage(`"scalar"`)))
	require.NoError(t, s.SetKeyed(Users, "k", json.RawMessage(`true`)))

	whole, ok := s.Get(Users)
	require.True(t, ok)
	assert.JSONEq(t, `{"k":true}`, string(whole))
}

func TestStore_SetKeyedRejectsInvalidJSON(t *testing.T) {
	s, _ := newStore(t)
	require.ErrorIs(t, s.SetKeyed(Labels, "k", json.RawMessage(`nope`)), ErrInvalidJSON)
}

func TestStore_KeyedExpiryIsPerType(t *testing.T) {
	s, c := newStore(t, WithTTL(60))
	require.NoError(t, s.SetKeyed(Statuses, "a", json.RawMessage(`1`)))

	c.Advance(61 * time.Second)
	_, ok := s.GetKeyed(Statuses, "a")
	assert.False(t, ok)
}

// A keyed write rewrites the whole entry, so it restarts the clock for every
// key stored under the type, not only the one written.
func TestStore_SetKeyedRefreshesWholeType(t *testing.T) {
	s, c := newStore(t, WithTTL(60))
	require.NoError(t, s.SetKeyed(Statuses, "old", json.RawMessage(`"stale"`)))

	c.Advance(50 * time.Second)
	require.NoError(t, s.SetKeyed(Statuses, "new", json.RawMessage(`"fresh"`)))

	// 70s after "old" was written it is still served, because "new" reset the
	// TTL of the whole Statuses entry.
	c.Advance(20 * time.Second)
	got, ok := s.GetKeyed(Statuses, "old")
	require.True(t, ok)
	assert.JSONEq(t, `"stale"`, string(got))

	entry, ok := s.GetEntry(Statuses)
	require.True(t, ok)
	assert.Equal(t, uint64(20), entry.AgeSeconds(c.Now()))
}

func TestStore_SetKeyedAfterExpiryStartsFresh(t *testing.T) {
	s, c := newStore(t, WithTTL(60))
	require.NoError(t, s.SetKeyed(Labels, "issue", json.RawMessage(`[1]`)))

	c.Advance(2 * time.Minute)
	require.NoError(t, s.SetKeyed(Labels, "project", json.RawMessage(`[2]`)))

	whole, ok := s.Get(Labels)
	require.True(t, ok)
	assert.JSONEq(t, `{"project":[2]}`, string(whole))
}
