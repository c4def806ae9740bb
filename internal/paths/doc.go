// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package paths resolves the per-user directories linctl keeps its cache and
// workspace registry in.
package paths
