// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/linctl/internal/api"
	"github.com/staranto/linctl/internal/attrs"
	"github.com/staranto/linctl/internal/cache"
	"github.com/staranto/linctl/internal/lookup"
	"github.com/staranto/linctl/internal/meta"
	"github.com/staranto/linctl/internal/output"
	"github.com/staranto/linctl/internal/paths"
	"github.com/staranto/linctl/internal/workspace"
)

// Examples returns the example usages a command was built with.
func Examples(cmd *cli.Command) [][2]string {
	if cmd == nil {
		return nil
	}
	ex, _ := cmd.Metadata["examples"].([][2]string)
	return ex
}

// GetMeta returns the meta.Meta stored in the Metadata of the command or
// its nearest ancestor. If missing, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil {
		return meta.Meta{}
	}
	for _, c := range cmd.Lineage() {
		if m, ok := c.Metadata["meta"].(meta.Meta); ok {
			return m
		}
	}
	return meta.Meta{}
}

// stdout is where command results go.
func stdout(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (attrs.AttrList, error) {
	var al attrs.AttrList
	for _, d := range defaults {
		if err := al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	if err := al.SetGlobalTransformSpec(); err != nil {
		return nil, err
	}
	return al, nil
}

// NewResolver returns the workspace resolver for the configured directory.
func NewResolver(cmd *cli.Command) (*workspace.Resolver, error) {
	m := GetMeta(cmd)
	dir := m.ConfigDir
	if dir == "" {
		var err error
		if dir, err = paths.ConfigDir(); err != nil {
			return nil, err
		}
	}
	return workspace.NewResolver(dir), nil
}

// NewStore returns the cache store, or nil when caching is disabled by
// --no-cache or LINCTL_CACHE.
func NewStore(cmd *cli.Command) *cache.Store {
	m := GetMeta(cmd)
	if cmd.Bool("no-cache") || !m.CacheEnabled {
		log.Debug("cache disabled")
		return nil
	}

	dir := m.CacheDir
	if dir == "" {
		var err error
		if dir, err = paths.CacheDir(); err != nil {
			log.WithError(err).Debug("cache disabled")
			return nil
		}
	}
	return cache.New(dir, cache.WithTTL(cmd.Uint64("cache-ttl")))
}

// NewClient resolves the API key and returns a client for it.
func NewClient(cmd *cli.Command) (*api.Client, error) {
	resolver, err := NewResolver(cmd)
	if err != nil {
		return nil, err
	}

	key, err := resolver.APIKey()
	if err != nil {
		return nil, err
	}

	var opts []api.Option
	if endpoint := cmd.String("endpoint"); endpoint != "" {
		opts = append(opts, api.WithEndpoint(endpoint))
	}
	return api.NewClient(key, opts...), nil
}

// NewLookup returns a cache backed lookup honoring --refresh.
func NewLookup(cmd *cli.Command) (*lookup.Lookup, error) {
	client, err := NewClient(cmd)
	if err != nil {
		return nil, err
	}
	return lookup.New(client,
		lookup.WithStore(NewStore(cmd)),
		lookup.WithRefresh(cmd.Bool("refresh")),
	), nil
}

// emitRows renders rows, any JSON encodable slice, through the common output
// routine.
func emitRows(cmd *cli.Command, rows any, defaults ...string) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	al, err := BuildAttrs(cmd, defaults...)
	if err != nil {
		return err
	}
	return output.SliceDiceSpit(raw, al, cmd, "", stdout(cmd))
}

// ReferenceCommandBuilder constructs a data command that reads Linear
// reference data through the cache.
type ReferenceCommandBuilder struct {
	Name         string
	Aliases      []string
	Usage        string
	UsageText    string
	Flags        []cli.Flag
	DefaultAttrs []string
	Examples     [][2]string
	Fetch        func(context.Context, *cli.Command, *lookup.Lookup) (json.RawMessage, error)
}

// Build returns a configured cli.Command from the builder.
func (rcb *ReferenceCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      rcb.Name,
		Aliases:   rcb.Aliases,
		Usage:     rcb.Usage,
		UsageText: rcb.UsageText,
		Flags: append(append([]cli.Flag{
			examplesFlag(),
			refreshFlag(),
		}, rcb.Flags...), NewGlobalFlags(rcb.Name)...),
		Metadata: map[string]any{
			"examples": rcb.Examples,
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: rcb.Run,
	}
}

// Run is the action shared by reference data commands.
func (rcb *ReferenceCommandBuilder) Run(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("executing %s", rcb.Name)

	if cmd.Bool("examples") {
		output.DumpExamples(stdout(cmd), rcb.Examples)
		return nil
	}

	al, err := BuildAttrs(cmd, rcb.DefaultAttrs...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al.String())

	l, err := NewLookup(cmd)
	if err != nil {
		return err
	}

	data, err := rcb.Fetch(ctx, cmd, l)
	if err != nil {
		return err
	}

	return output.SliceDiceSpit(data, al, cmd, "", stdout(cmd))
}
