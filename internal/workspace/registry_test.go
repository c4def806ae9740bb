// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package workspace

import (
	"os"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Fixtures(t *testing.T) {
	tests := []struct {
		name        string
		fixture     string
		wantCurrent string
		wantKeys    map[string]string
		wantRewrite bool
	}{
		{
			name:        "fresh",
			fixture:     "",
			wantCurrent: "",
			wantKeys:    map[string]string{},
		},
		{
			name:        "legacy",
			fixture:     "legacy.toml",
			wantCurrent: DefaultName,
			wantKeys:    map[string]string{DefaultName: "lin_api_legacy0123456789"},
			wantRewrite: true,
		},
		{
			name:        "legacy with existing default",
			fixture:     "legacy-with-default.toml",
			wantCurrent: "work",
			wantKeys: map[string]string{
				DefaultName: "lin_api_existing_default",
				"work":      "lin_api_work000000000",
			},
			wantRewrite: true,
		},
		{
			name:        "migrated",
			fixture:     "migrated.toml",
			wantCurrent: DefaultName,
			wantKeys:    map[string]string{DefaultName: "lin_api_legacy0123456789"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, tt.fixture)

			var before []byte
			if tt.fixture != "" {
				before = []byte(readRegistry(t, r))
			}

			reg, err := r.Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantCurrent, reg.Current)
			assert.Empty(t, reg.LegacyAPIKey)

			got := map[string]string{}
			for name, ws := range reg.Workspaces {
				got[name] = ws.APIKey
			}
			assert.Equal(t, tt.wantKeys, got)

			if tt.fixture == "" {
				_, err := os.Stat(r.Path())
				assert.True(t, os.IsNotExist(err), "loading must not create a registry")
				return
			}

			after := []byte(readRegistry(t, r))
			if tt.wantRewrite {
				assert.NotEqual(t, string(before), string(after))
				var onDisk Registry
				_, err := toml.Decode(string(after), &onDisk)
				require.NoError(t, err)
				assert.Empty(t, onDisk.LegacyAPIKey, "legacy key is not written back")
			} else {
				assert.Equal(t, string(before), string(after), "steady-state load must not write")
			}
		})
	}
}

func TestLoad_LegacyMigratesOnce(t *testing.T) {
	r := newResolver(t, "legacy.toml")

	_, err := r.Load()
	require.NoError(t, err)
	first := readRegistry(t, r)

	var onDisk Registry
	_, err = toml.Decode(first, &onDisk)
	require.NoError(t, err)
	assert.Empty(t, onDisk.LegacyAPIKey)
	assert.Equal(t, DefaultName, onDisk.Current)

	// Second load is a steady-state load of the migrated form.
	_, err = r.Load()
	require.NoError(t, err)
	assert.Equal(t, first, readRegistry(t, r))
}

func TestMigrateLegacy(t *testing.T) {
	t.Run("no legacy key", func(t *testing.T) {
		reg := &Registry{Workspaces: map[string]Workspace{}}
		assert.False(t, migrateLegacy(reg))
		assert.Empty(t, reg.Workspaces)
	})

	t.Run("keeps existing current", func(t *testing.T) {
		reg := &Registry{
			Current:      "other",
			LegacyAPIKey: "legacy",
			Workspaces:   map[string]Workspace{"other": {APIKey: "k"}},
		}
		assert.True(t, migrateLegacy(reg))
		assert.Equal(t, "other", reg.Current)
		assert.Equal(t, "legacy", reg.Workspaces[DefaultName].APIKey)
		assert.Empty(t, reg.LegacyAPIKey)
	})
}

func TestLoadRegistry_DoesNotMigrate(t *testing.T) {
	r := newResolver(t, "legacy.toml")

	reg, err := r.loadRegistry()
	require.NoError(t, err)
	assert.Equal(t, "lin_api_legacy0123456789", reg.LegacyAPIKey)
	assert.Empty(t, reg.Workspaces)
	assert.NotNil(t, reg.Workspaces)
}

func TestRegistry_Names(t *testing.T) {
	reg := &Registry{Workspaces: map[string]Workspace{"b": {}, "c": {}, "a": {}}}
	assert.Equal(t, []string{"a", "b", "c"}, reg.Names())
}
