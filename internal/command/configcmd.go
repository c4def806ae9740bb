// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/linctl/internal/config"
	"github.com/staranto/linctl/internal/paths"
	"github.com/staranto/linctl/internal/workspace"
)

var errMissingKey = errors.New("API key is required")

// ConfigCommandBuilder groups the commands that show or change settings.
func ConfigCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "show settings or store an API key",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "show resolved directories, files and credentials",
				UsageText: "linctl config show",
				Action:    configShowAction,
			},
			{
				Name:      "set-key",
				Usage:     "store an API key in the current workspace",
				UsageText: "linctl config set-key <api key>",
				Action:    configSetKeyAction,
			},
		},
	}
}

func configShowAction(_ context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	r, err := NewResolver(cmd)
	if err != nil {
		return err
	}

	cacheDir := m.CacheDir
	if cacheDir == "" {
		if cacheDir, err = paths.CacheDir(); err != nil {
			cacheDir = err.Error()
		}
	}

	prefs := config.Config.Source
	if prefs == "" {
		prefs = "(none)"
	}

	enabled := m.CacheEnabled && !cmd.Bool("no-cache")

	w := stdout(cmd)
	fmt.Fprintf(w, "Config directory:  %s\n", filepath.Dir(r.Path()))
	fmt.Fprintf(w, "Registry file:     %s\n", r.Path())
	fmt.Fprintf(w, "Preferences file:  %s\n", prefs)
	fmt.Fprintf(w, "Cache directory:   %s\n", cacheDir)
	fmt.Fprintf(w, "Cache enabled:     %t\n", enabled)
	fmt.Fprintf(w, "Cache TTL:         %ds\n", cmd.Uint64("cache-ttl"))

	cur, err := r.Current()
	if err != nil {
		return err
	}
	switch {
	case cur == nil:
		fmt.Fprintln(w, "Workspace:         (none)")
	case cur.Missing:
		fmt.Fprintf(w, "Workspace:         %s (missing)\n", cur.Name)
	default:
		fmt.Fprintf(w, "Workspace:         %s\n", cur.Name)
	}

	if key, ok := os.LookupEnv(workspace.EnvAPIKey); ok && key != "" {
		fmt.Fprintf(w, "API key:           %s (from %s)\n", workspace.Mask(key), workspace.EnvAPIKey)
	} else if cur != nil && !cur.Missing {
		fmt.Fprintf(w, "API key:           %s (from workspace)\n", cur.MaskedKey)
	} else {
		fmt.Fprintln(w, "API key:           (not set)")
	}

	if endpoint := cmd.String("endpoint"); endpoint != "" {
		fmt.Fprintf(w, "Endpoint:          %s\n", endpoint)
	}
	return nil
}

func configSetKeyAction(_ context.Context, cmd *cli.Command) error {
	key := strings.TrimSpace(cmd.Args().First())
	if key == "" {
		return errMissingKey
	}

	r, err := NewResolver(cmd)
	if err != nil {
		return err
	}
	if err := r.SetAPIKey(key); err != nil {
		return err
	}

	cur, err := r.Current()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout(cmd), "API key saved to workspace '%s'\n", cur.Name)
	return nil
}
