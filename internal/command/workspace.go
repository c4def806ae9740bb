// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/linctl/internal/workspace"
)

var errMissingName = errors.New("workspace name is required")

// WorkspaceCommandBuilder groups the workspace registry commands.
func WorkspaceCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:    "workspace",
		Aliases: []string{"ws"},
		Usage:   "manage named Linear workspaces and their API keys",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "register a workspace",
				UsageText: "linctl workspace add <name> [--key <api key>]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "key",
						Usage: "API key; prompted for when omitted",
						Validator: func(value string) error {
							return FlagValidators(value, JammedFlagValidator, NotBlankValidator)
						},
					},
				},
				Action: workspaceAddAction,
			},
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "list registered workspaces",
				UsageText: "linctl workspace list [options]",
				Flags:     NewGlobalFlags("workspace"),
				Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
					return ctx, GlobalFlagsValidator(ctx, c)
				},
				Action: workspaceListAction,
			},
			{
				Name:      "switch",
				Usage:     "make a workspace current",
				UsageText: "linctl workspace switch <name>",
				Action:    workspaceSwitchAction,
			},
			{
				Name:      "current",
				Usage:     "show the current workspace",
				UsageText: "linctl workspace current",
				Action:    workspaceCurrentAction,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "remove a workspace",
				UsageText: "linctl workspace remove <name>",
				Action:    workspaceRemoveAction,
			},
		},
	}
}

func nameArg(cmd *cli.Command) (string, error) {
	name := strings.TrimSpace(cmd.Args().First())
	if name == "" {
		return "", errMissingName
	}
	return name, nil
}

func workspaceAddAction(_ context.Context, cmd *cli.Command) error {
	name, err := nameArg(cmd)
	if err != nil {
		return err
	}

	key := cmd.String("key")
	if key == "" {
		if key, err = readAPIKey(cmd.Root().Reader, cmd.Root().ErrWriter,
			fmt.Sprintf("API key for '%s': ", name)); err != nil {
			return err
		}
	}

	r, err := NewResolver(cmd)
	if err != nil {
		return err
	}

	switched, err := r.Add(name, key)
	if err != nil {
		return err
	}

	w := stdout(cmd)
	fmt.Fprintf(w, "Added workspace '%s'\n", name)
	if switched {
		fmt.Fprintf(w, "Switched to workspace '%s'\n", name)
	}
	return nil
}

// readAPIKey reads a key from in. A terminal gets a prompt and no echo,
// anything else is read up to the first newline.
func readAPIKey(in io.Reader, prompt io.Writer, msg string) (string, error) {
	if in == nil {
		in = os.Stdin
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if prompt == nil {
			prompt = os.Stderr
		}
		fmt.Fprint(prompt, msg)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	key := strings.TrimSpace(line)
	if key == "" {
		return "", workspace.ErrEmptyAPIKey
	}
	return key, nil
}

func workspaceListAction(_ context.Context, cmd *cli.Command) error {
	r, err := NewResolver(cmd)
	if err != nil {
		return err
	}

	entries, err := r.List()
	if err != nil {
		return err
	}
	log.Debugf("%d workspaces", len(entries))

	if len(entries) == 0 && cmd.String("output") == "text" {
		fmt.Fprintln(stdout(cmd), "No workspaces. Run: linctl workspace add <name>")
		return nil
	}

	return emitRows(cmd, entries, "name,api_key:key,current")
}

func workspaceSwitchAction(_ context.Context, cmd *cli.Command) error {
	name, err := nameArg(cmd)
	if err != nil {
		return err
	}

	r, err := NewResolver(cmd)
	if err != nil {
		return err
	}
	if err := r.Switch(name); err != nil {
		return err
	}

	fmt.Fprintf(stdout(cmd), "Switched to workspace '%s'\n", name)
	return nil
}

func workspaceCurrentAction(_ context.Context, cmd *cli.Command) error {
	r, err := NewResolver(cmd)
	if err != nil {
		return err
	}

	cur, err := r.Current()
	if err != nil {
		return err
	}

	w := stdout(cmd)
	switch {
	case cur == nil:
		fmt.Fprintln(w, "No workspace selected. Run: linctl workspace add <name>")
	case cur.Missing:
		fmt.Fprintf(w, "%s (missing)\n", cur.Name)
	default:
		fmt.Fprintf(w, "%s %s\n", cur.Name, cur.MaskedKey)
	}

	if key, ok := os.LookupEnv(workspace.EnvAPIKey); ok && key != "" {
		fmt.Fprintf(w, "Note: %s is set and overrides the workspace key\n", workspace.EnvAPIKey)
	}
	return nil
}

func workspaceRemoveAction(_ context.Context, cmd *cli.Command) error {
	name, err := nameArg(cmd)
	if err != nil {
		return err
	}

	r, err := NewResolver(cmd)
	if err != nil {
		return err
	}

	current, err := r.Remove(name)
	if err != nil {
		return err
	}

	w := stdout(cmd)
	fmt.Fprintf(w, "Removed workspace '%s'\n", name)
	if current != "" {
		fmt.Fprintf(w, "Current workspace: %s\n", current)
	} else {
		fmt.Fprintln(w, "No workspace selected")
	}
	return nil
}
