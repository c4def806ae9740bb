// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/linctl/internal/output"
)

var queryExamples = [][2]string{
	{`linctl query '{ viewer { id name email } }'`, "who am I"},
	{`linctl query '{ issues(first: 5) { nodes { identifier title } } }' -o text --path issues.nodes`, "issues as a table"},
	{`linctl query 'query($id: String!) { team(id: $id) { name } }' --var id=abc`, "with a string variable"},
	{`linctl query --var input:='{"title":"x","priority":2}' - < mutation.graphql`, "mutation from stdin with a JSON variable"},
}

var (
	errMissingQuery = errors.New("a GraphQL document is required, or '-' to read it from stdin")
	errBadVar       = errors.New("invalid --var")
)

// QueryCommandBuilder passes a GraphQL document straight to the API.
func QueryCommandBuilder() *cli.Command {
	flags := append([]cli.Flag{
		examplesFlag(),
		&cli.StringMapFlag{
			Name:  "var",
			Usage: "variable as name=value (string) or name:=value (JSON)",
		},
		&cli.StringFlag{
			Name:  "path",
			Usage: "path below data to the rows for text, json and yaml output",
		},
	}, NewGlobalFlags("query")...)

	// Query results are documents rather than rows, so default to raw.
	for _, f := range flags {
		if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "output" {
			sf.Value = "raw"
		}
	}

	return &cli.Command{
		Name:      "query",
		Aliases:   []string{"q"},
		Usage:     "run a raw GraphQL query or mutation",
		UsageText: "linctl query [--var name=value ...] [options] <document|->",
		Flags:     flags,
		Metadata: map[string]any{
			"examples": queryExamples,
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: queryAction,
	}
}

func queryAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("examples") {
		output.DumpExamples(stdout(cmd), queryExamples)
		return nil
	}

	doc := cmd.Args().First()
	if doc == "-" {
		b, err := io.ReadAll(cmd.Root().Reader)
		if err != nil {
			return fmt.Errorf("failed to read query: %w", err)
		}
		doc = string(b)
	}
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return errMissingQuery
	}

	vars, err := parseVars(cmd.StringMap("var"))
	if err != nil {
		return err
	}

	client, err := NewClient(cmd)
	if err != nil {
		return err
	}

	log.WithField("vars", len(vars)).Debug("sending document")
	result, err := client.Query(ctx, doc, vars)
	if err != nil {
		return err
	}

	parent := "data"
	if p := strings.Trim(cmd.String("path"), "."); p != "" {
		parent += "." + p
	}

	al, err := BuildAttrs(cmd)
	if err != nil {
		return err
	}
	return output.SliceDiceSpit(result, al, cmd, parent, stdout(cmd))
}

// parseVars keeps name=value variables as strings and decodes name:=value
// variables as JSON.
func parseVars(in map[string]string) (map[string]any, error) {
	if len(in) == 0 {
		return nil, nil
	}

	vars := make(map[string]any, len(in))
	for k, v := range in {
		name, typed := strings.CutSuffix(k, ":")
		if name == "" {
			return nil, fmt.Errorf("%w: %q", errBadVar, k+"="+v)
		}
		if !typed {
			vars[name] = v
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil, fmt.Errorf("%w: %s is not valid JSON: %w", errBadVar, name, err)
		}
		vars[name] = decoded
	}
	return vars, nil
}
