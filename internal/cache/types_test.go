// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_NamesAndFiles(t *testing.T) {
	want := map[Type][2]string{
		Teams:    {"Teams", "teams.json"},
		Users:    {"Users", "users.json"},
		Statuses: {"Statuses", "statuses.json"},
		Labels:   {"Labels", "labels.json"},
	}

	all := AllTypes()
	require.Len(t, all, len(want))
	for _, typ := range all {
		assert.Equal(t, want[typ][0], typ.String())
		assert.Equal(t, want[typ][1], typ.Filename())
	}
}

func TestAllTypes_ReturnsCopy(t *testing.T) {
	all := AllTypes()
	all[0] = Labels
	assert.Equal(t, Teams, AllTypes()[0])
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"teams", Teams, false},
		{"USERS", Users, false},
		{"statuses", Statuses, false},
		{"states", Statuses, false},
		{" Labels ", Labels, false},
		{"projects", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownType)
				assert.Contains(t, err.Error(), "Valid types")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
