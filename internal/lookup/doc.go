// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package lookup fetches Linear reference data (teams, users, workflow
// statuses and labels) through the local cache. A fresh cache entry answers
// the request without touching the network; otherwise the API is queried and
// the result written back.
package lookup
