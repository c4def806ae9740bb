// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/linctl/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args      []string
	Config    config.Type
	Context   context.Context
	CacheDir  string
	ConfigDir string
	// CacheEnabled is false when LINCTL_CACHE disables the cache.
	CacheEnabled bool
}
