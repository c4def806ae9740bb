// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package api is a minimal GraphQL transport for the Linear API.
package api
