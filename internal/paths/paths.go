// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// AppName is the directory name used beneath the per-user cache and config
// roots.
const AppName = "linctl"

// Environment overrides.
const (
	EnvCacheDir     = "LINCTL_CACHE_DIR"
	EnvConfigDir    = "LINCTL_CONFIG_DIR"
	EnvCacheEnabled = "LINCTL_CACHE"
)

// ErrNoBaseDir is returned when neither the override variable nor the OS
// provides a usable directory.
var ErrNoBaseDir = errors.New("unable to resolve a per-user directory")

// CacheDir resolves the base cache directory.
// Precedence:
//  1. LINCTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/linctl
func CacheDir() (string, error) {
	return resolve(EnvCacheDir, os.UserCacheDir)
}

// ConfigDir resolves the directory holding the workspace registry.
// Precedence:
//  1. LINCTL_CONFIG_DIR, if set and non-empty
//  2. os.UserConfigDir()/linctl
func ConfigDir() (string, error) {
	return resolve(EnvConfigDir, os.UserConfigDir)
}

func resolve(env string, fallback func() (string, error)) (string, error) {
	if d, ok := os.LookupEnv(env); ok && d != "" {
		return d, nil
	}
	dir, err := fallback()
	if err != nil {
		return "", fmt.Errorf("%w (set %s): %w", ErrNoBaseDir, env, err)
	}
	if dir == "" {
		return "", fmt.Errorf("%w (set %s)", ErrNoBaseDir, env)
	}
	return filepath.Join(dir, AppName), nil
}

// CacheEnabled returns true unless LINCTL_CACHE explicitly disables it
// ("0"/"false").
func CacheEnabled() bool {
	enabled, _ := os.LookupEnv(EnvCacheEnabled)
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureCacheDir creates the base cache directory if caching is enabled and a
// base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureCacheDir() (string, bool, error) {
	if !CacheEnabled() {
		return "", false, nil
	}
	base, err := CacheDir()
	if err != nil {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}
