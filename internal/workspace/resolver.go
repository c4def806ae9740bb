// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
)

// EnvAPIKey overrides the registry entirely when set and non-empty.
const EnvAPIKey = "LINEAR_API_KEY"

// Sentinel errors. Callers detect them with errors.Is; the wrapped messages
// carry the workspace name and the command to run next.
var (
	ErrEmptyName          = errors.New("workspace name cannot be empty")
	ErrEmptyAPIKey        = errors.New("API key cannot be empty")
	ErrWorkspaceExists    = errors.New("workspace already exists")
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrNoCurrentWorkspace = errors.New("no workspace selected")
)

// Resolver manages the registry file in a config directory and resolves the
// API key for an invocation. It holds no registry state between calls.
type Resolver struct {
	dir       string
	lookupEnv func(string) (string, bool)
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithEnvLookup replaces os.LookupEnv for the API key override.
func WithEnvLookup(fn func(string) (string, bool)) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.lookupEnv = fn
		}
	}
}

// NewResolver returns a Resolver whose registry lives in configDir.
func NewResolver(configDir string, opts ...Option) *Resolver {
	r := &Resolver{
		dir:       configDir,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Entry is the display form of a workspace.
type Entry struct {
	Name      string `json:"name"`
	MaskedKey string `json:"api_key"`
	Current   bool   `json:"current"`
	// Missing is set when the registry's current name has no workspace.
	Missing bool `json:"missing,omitempty"`
}

// APIKey resolves the credential for this invocation. The EnvAPIKey variable
// wins when non-empty; otherwise the current workspace's key is used.
func (r *Resolver) APIKey() (string, error) {
	if key, ok := r.lookupEnv(EnvAPIKey); ok && key != "" {
		log.Debugf("using API key from %s", EnvAPIKey)
		return key, nil
	}

	reg, err := r.Load()
	if err != nil {
		return "", err
	}

	if reg.Current == "" {
		return "", fmt.Errorf("%w. Run: linctl workspace add <name>", ErrNoCurrentWorkspace)
	}

	ws, ok := reg.Workspaces[reg.Current]
	if !ok {
		return "", fmt.Errorf("%w: '%s'. Run: linctl workspace add <name>", ErrWorkspaceNotFound, reg.Current)
	}
	if ws.APIKey == "" {
		return "", fmt.Errorf("%w: workspace '%s' has no key. Run: linctl config set-key <key>", ErrEmptyAPIKey, reg.Current)
	}

	log.Debugf("using API key from workspace %q", reg.Current)
	return ws.APIKey, nil
}

// Add registers a new workspace. An existing name is never overwritten. The
// first workspace added to a registry with no current selection becomes
// current, which is reported by the returned bool.
func (r *Resolver) Add(name, apiKey string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyName
	}
	if apiKey == "" {
		return false, ErrEmptyAPIKey
	}

	var switched bool
	err := r.update(func(reg *Registry) error {
		if _, exists := reg.Workspaces[name]; exists {
			return fmt.Errorf("%w: '%s'. Use 'linctl workspace remove %s' first to replace it",
				ErrWorkspaceExists, name, name)
		}

		reg.Workspaces[name] = Workspace{APIKey: apiKey}
		if reg.Current == "" {
			reg.Current = name
			switched = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return switched, nil
}

// Switch makes name the current workspace.
func (r *Resolver) Switch(name string) error {
	return r.update(func(reg *Registry) error {
		if _, ok := reg.Workspaces[name]; !ok {
			return notFound(name)
		}
		reg.Current = name
		return nil
	})
}

// Remove deletes name from the registry. When it was current, the lexically
// first remaining workspace becomes current, or none if the registry is now
// empty. The returned string is the current workspace after removal.
func (r *Resolver) Remove(name string) (string, error) {
	var current string
	err := r.update(func(reg *Registry) error {
		if _, ok := reg.Workspaces[name]; !ok {
			return notFound(name)
		}

		delete(reg.Workspaces, name)

		if reg.Current == name {
			reg.Current = ""
			if names := reg.Names(); len(names) > 0 {
				reg.Current = names[0]
			}
		}
		current = reg.Current
		return nil
	})
	if err != nil {
		return "", err
	}
	return current, nil
}

// List returns every workspace, sorted by name, with masked keys.
func (r *Resolver) List() ([]Entry, error) {
	reg, err := r.Load()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(reg.Workspaces))
	for _, name := range reg.Names() {
		entries = append(entries, Entry{
			Name:      name,
			MaskedKey: Mask(reg.Workspaces[name].APIKey),
			Current:   name == reg.Current,
		})
	}
	return entries, nil
}

// Current returns the selected workspace, or nil when none is selected.
func (r *Resolver) Current() (*Entry, error) {
	reg, err := r.Load()
	if err != nil {
		return nil, err
	}
	if reg.Current == "" {
		return nil, nil
	}

	entry := &Entry{Name: reg.Current, Current: true}
	if ws, ok := reg.Workspaces[reg.Current]; ok {
		entry.MaskedKey = Mask(ws.APIKey)
	} else {
		entry.Missing = true
	}
	return entry, nil
}

// SetAPIKey stores key in the current workspace, creating and selecting the
// "default" workspace when nothing is selected.
func (r *Resolver) SetAPIKey(key string) error {
	if key == "" {
		return ErrEmptyAPIKey
	}
	return r.update(func(reg *Registry) error {
		name := reg.Current
		if name == "" {
			name = DefaultName
			reg.Current = name
		}
		reg.Workspaces[name] = Workspace{APIKey: key}
		return nil
	})
}

// Mask hides the middle of key for display. Keys of 12 characters or fewer
// are shown as is.
func Mask(key string) string {
	runes := []rune(key)
	if len(runes) <= 12 { //nolint:mnd
		return key
	}
	return string(runes[:8]) + "..." + string(runes[len(runes)-4:])
}

func notFound(name string) error {
	return fmt.Errorf("%w: '%s'. Use 'linctl workspace list' to see available workspaces",
		ErrWorkspaceNotFound, name)
}
