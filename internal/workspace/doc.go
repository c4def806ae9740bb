// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package workspace maintains the registry of named API credentials and
// decides which credential an invocation uses.
package workspace
