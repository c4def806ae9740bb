// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/linctl/internal/cache"
	"github.com/staranto/linctl/internal/paths"
)

// cacheStatusRow is the display form of one cache.Status.
type cacheStatusRow struct {
	Type      string `json:"type"`
	State     string `json:"state"`
	Age       string `json:"age"`
	Remaining string `json:"remaining"`
	Size      string `json:"size"`
	Items     string `json:"items"`
}

// CacheCommandBuilder groups the cache maintenance commands.
func CacheCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "inspect or clear the local reference data cache",
		Commands: []*cli.Command{
			{
				Name:      "status",
				Usage:     "show age, size and validity of each cache",
				UsageText: "linctl cache status [options]",
				Flags:     NewGlobalFlags("cache"),
				Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
					return ctx, GlobalFlagsValidator(ctx, c)
				},
				Action: cacheStatusAction,
			},
			{
				Name:      "clear",
				Usage:     "remove cached data",
				UsageText: "linctl cache clear [--type teams|users|statuses|labels]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "clear only this cache type",
						Validator: func(value string) error {
							_, err := cache.ParseType(value)
							return err
						},
					},
				},
				Action: cacheClearAction,
			},
		},
	}
}

// cacheStore returns the store at the configured directory whether or not
// caching is enabled.
func cacheStore(cmd *cli.Command) (*cache.Store, error) {
	dir := GetMeta(cmd).CacheDir
	if dir == "" {
		var err error
		if dir, err = paths.CacheDir(); err != nil {
			return nil, err
		}
	}
	return cache.New(dir, cache.WithTTL(cmd.Uint64("cache-ttl"))), nil
}

func cacheStatusAction(_ context.Context, cmd *cli.Command) error {
	store, err := cacheStore(cmd)
	if err != nil {
		return err
	}

	rows := make([]cacheStatusRow, 0, len(cache.AllTypes()))
	for _, st := range store.Status() {
		state := "missing"
		switch {
		case st.Valid:
			state = "valid"
		case st.Age != nil:
			state = "expired"
		}

		rows = append(rows, cacheStatusRow{
			Type:      st.Type.String(),
			State:     state,
			Age:       st.AgeDisplay(),
			Remaining: st.RemainingDisplay(),
			Size:      st.SizeDisplay(),
			Items:     st.ItemsDisplay(),
		})
	}

	if cmd.String("output") == "text" {
		w := stdout(cmd)
		fmt.Fprintf(w, "Cache directory: %s\n", store.Dir())
		if cmd.Bool("no-cache") || !GetMeta(cmd).CacheEnabled {
			fmt.Fprintf(w, "Caching is disabled (%s or --no-cache)\n", paths.EnvCacheEnabled)
		}
		fmt.Fprintln(w)
	}

	return emitRows(cmd, rows, "type,state,age,remaining,size,items")
}

func cacheClearAction(_ context.Context, cmd *cli.Command) error {
	store, err := cacheStore(cmd)
	if err != nil {
		return err
	}
	w := stdout(cmd)

	if cmd.IsSet("type") {
		t, err := cache.ParseType(cmd.String("type"))
		if err != nil {
			return err
		}
		if err := store.ClearType(t); err != nil {
			return err
		}
		log.Debugf("cleared %s", store.Path(t))
		fmt.Fprintf(w, "Cleared %s cache\n", t)
		return nil
	}

	if err := store.ClearAll(); err != nil {
		return err
	}
	fmt.Fprintln(w, "Cleared all caches")
	return nil
}
