// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/linctl/internal/cache"
	"github.com/staranto/linctl/internal/config"
)

const (
	// EnvEndpoint overrides the GraphQL endpoint.
	EnvEndpoint = "LINCTL_API_URL"
	// EnvCacheTTL overrides the cache TTL in seconds.
	EnvCacheTTL = "LINCTL_CACHE_TTL"
)

func examplesFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "examples",
		Usage:       "show example usages",
		HideDefault: true,
	}
}

func refreshFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "refresh",
		Aliases:     []string{"r"},
		Usage:       "ignore cached data and fetch from Linear",
		HideDefault: true,
	}
}

// configSource is the preferences file backing the yaml value sources. It is
// resolved when a flag is read, so the file may be loaded after the flags
// are built.
func configSource() altsrc.StringPtrSourcer {
	return altsrc.NewStringPtrSourcer(&config.Config.Source)
}

// NewRootFlags returns the flags available to every command.
func NewRootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{
			Name:  "cache-ttl",
			Usage: "seconds before cached reference data expires",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar(EnvCacheTTL),
				yaml.YAML("cache.ttl", configSource()),
			),
			Value: cache.DefaultTTL,
		},
		&cli.BoolFlag{
			Name:        "no-cache",
			Usage:       "bypass the local cache",
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "GraphQL endpoint",
			Hidden:  true,
			Sources: cli.EnvVars(EnvEndpoint),
		},
	}
}

// NewGlobalFlags returns the output flags shared by data commands. params[0]
// is the command name and namespaces the preferences file lookups.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns := ""
	if len(params) > 0 {
		ns = params[0] + "."
	}

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"attrs", configSource()),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"color", configSource()),
				yaml.YAML("color", configSource()),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"output", configSource()),
				yaml.YAML("output", configSource()),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"sort", configSource()),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"titles", configSource()),
				yaml.YAML("titles", configSource()),
			),
			Value: false,
		},
	}

	return
}
