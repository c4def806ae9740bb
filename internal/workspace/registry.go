// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/apex/log"
)

// RegistryFile is the name of the registry file inside the config directory.
const RegistryFile = "config.toml"

// DefaultName is the workspace a legacy single-key config migrates into.
const DefaultName = "default"

// Workspace is one named credential.
type Workspace struct {
	APIKey string `toml:"api_key"`
}

// Registry is the persisted set of workspaces plus the current selection.
type Registry struct {
	// Current names the active workspace. It should reference an entry in
	// Workspaces but nothing enforces that, so readers must check.
	Current    string               `toml:"current,omitempty"`
	Workspaces map[string]Workspace `toml:"workspaces,omitempty"`
	// LegacyAPIKey is the single key written by releases that predate
	// workspaces. It is only read, by migrateLegacy, and never written back.
	LegacyAPIKey string `toml:"api_key,omitempty"`
}

// Names returns the workspace names in lexical order.
func (reg *Registry) Names() []string {
	names := make([]string, 0, len(reg.Workspaces))
	for name := range reg.Workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path is the location of the registry file.
func (r *Resolver) Path() string {
	return filepath.Join(r.dir, RegistryFile)
}

// Load reads the registry, upgrading a legacy single-key file in place the
// first time it is seen. A missing file yields an empty registry.
func (r *Resolver) Load() (*Registry, error) {
	reg, err := r.loadRegistry()
	if err != nil {
		return nil, err
	}

	if migrateLegacy(reg) {
		log.Debugf("migrated legacy api_key into workspace %q", DefaultName)
		if err := r.save(reg); err != nil {
			return nil, fmt.Errorf("failed to save migrated workspace registry: %w", err)
		}
	}

	return reg, nil
}

// loadRegistry is the steady-state read with no upgrade logic.
func (r *Resolver) loadRegistry() (*Registry, error) {
	reg := &Registry{}

	if _, err := toml.DecodeFile(r.Path(), reg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read workspace registry %s: %w", r.Path(), err)
		}
		log.Debugf("no workspace registry at %s", r.Path())
	}

	if reg.Workspaces == nil {
		reg.Workspaces = make(map[string]Workspace)
	}
	return reg, nil
}

// migrateLegacy moves a legacy top-level api_key into the "default" workspace
// and reports whether the registry changed and needs saving. An existing
// "default" workspace wins over the legacy key, which is dropped either way.
func migrateLegacy(reg *Registry) bool {
	if reg.LegacyAPIKey == "" {
		return false
	}

	legacy := reg.LegacyAPIKey
	reg.LegacyAPIKey = ""

	if _, exists := reg.Workspaces[DefaultName]; !exists {
		reg.Workspaces[DefaultName] = Workspace{APIKey: legacy}
		if reg.Current == "" {
			reg.Current = DefaultName
		}
	}

	return true
}

func (r *Resolver) save(reg *Registry) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(reg); err != nil {
		return fmt.Errorf("failed to encode workspace registry: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(r.Path(), buf.Bytes(), os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write workspace registry: %w", err)
	}
	return nil
}

// update loads the registry, applies fn and saves the result. Nothing is
// written when fn fails.
func (r *Resolver) update(fn func(*Registry) error) error {
	reg, err := r.Load()
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	return r.save(reg)
}
