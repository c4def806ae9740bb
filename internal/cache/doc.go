// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides a file-based, TTL-bounded mirror of reference data
// that is expensive to fetch from the API (teams, users, workflow statuses and
// labels). Each cache type lives in its own file so clearing one type never
// touches the others.
package cache
