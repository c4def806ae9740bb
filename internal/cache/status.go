// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
)

// Status is a read-only view of one cache type. The optional fields are nil
// when there is no readable entry for the type.
type Status struct {
	Type      Type
	Valid     bool
	Age       *uint64
	Remaining *uint64
	Size      *int64
	Items     *int
}

// Status reports on every cache type. Unlike Get it never evicts anything.
func (s *Store) Status() []Status {
	now := s.now()

	result := make([]Status, 0, len(allTypes))
	for _, t := range allTypes {
		st := Status{Type: t}

		info, err := os.Stat(s.Path(t))
		if err == nil {
			if entry, ok := s.GetEntry(t); ok {
				age := entry.AgeSeconds(now)
				remaining := entry.RemainingTTL(now)
				size := info.Size()
				items := entry.ItemCount()

				st.Valid = entry.IsValid(now)
				st.Age = &age
				st.Remaining = &remaining
				st.Size = &size
				st.Items = &items
			}
		}

		result = append(result, st)
	}
	return result
}

// AgeDisplay renders Age as 45s, 12m or 2h 5m.
func (st Status) AgeDisplay() string {
	if st.Age == nil {
		return "-"
	}
	return secondsDisplay(*st.Age)
}

// RemainingDisplay renders Remaining in the same form as AgeDisplay.
func (st Status) RemainingDisplay() string {
	if st.Remaining == nil || !st.Valid {
		return "-"
	}
	return secondsDisplay(*st.Remaining)
}

// SizeDisplay renders Size in human readable binary units.
func (st Status) SizeDisplay() string {
	if st.Size == nil {
		return "-"
	}
	return humanize.IBytes(uint64(*st.Size))
}

// ItemsDisplay renders Items or "-".
func (st Status) ItemsDisplay() string {
	if st.Items == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *st.Items)
}

func secondsDisplay(secs uint64) string {
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	default:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	}
}
