// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/linctl/internal/config"
	"github.com/staranto/linctl/internal/meta"
	"github.com/staranto/linctl/internal/paths"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// The arg[1] immediately following the binary (arg[0]) is the linctl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	config.SetNamespace(ns)
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrNoConfigFile) {
			return nil, err
		}
		log.WithError(err).Debug("no preferences file")
		config.Config = config.Type{Namespace: ns}
		cfg = config.Config
	}

	m := meta.Meta{
		Args:         args,
		Config:       cfg,
		Context:      ctx,
		CacheEnabled: paths.CacheEnabled(),
	}
	if m.CacheDir, err = paths.CacheDir(); err != nil {
		log.WithError(err).Debug("no cache directory")
	}
	if m.ConfigDir, err = paths.ConfigDir(); err != nil {
		return nil, err
	}

	app := &cli.Command{
		Name:  "linctl",
		Usage: "Linear from the command line",
		Flags: NewRootFlags(),
		Metadata: map[string]any{
			"meta": m,
		},
	}

	app.Commands = append(app.Commands,
		TeamsCommandBuilder(),
		UsersCommandBuilder(),
		StatusesCommandBuilder(),
		LabelsCommandBuilder(),
		QueryCommandBuilder(),
		WorkspaceCommandBuilder(),
		CacheCommandBuilder(),
		ConfigCommandBuilder(),
		CompletionCommandBuilder(),
	)

	// Make sure flags are sorted for the --help text.
	sortFlags(app)

	// --var values are JSON and may contain commas. urfave/cli resets the
	// separator switch from each command it runs, so every command needs it.
	disableSliceSeparators(app)

	return app, nil
}

func sortFlags(cmd *cli.Command) {
	sort.Slice(cmd.Flags, func(i, j int) bool {
		return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
	})
	for _, sub := range cmd.Commands {
		sortFlags(sub)
	}
}

func disableSliceSeparators(cmd *cli.Command) {
	cmd.DisableSliceFlagSeparator = true
	for _, sub := range cmd.Commands {
		disableSliceSeparators(sub)
	}
}
