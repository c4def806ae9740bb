// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/staranto/linctl/internal/lookup"
)

var errMissingTeam = errors.New("--team is required. Use 'linctl teams' to see available teams")

// TeamsCommandBuilder lists teams.
func TeamsCommandBuilder() *cli.Command {
	rcb := &ReferenceCommandBuilder{
		Name:         "teams",
		Usage:        "list teams",
		UsageText:    "linctl teams [options]",
		DefaultAttrs: []string{"key,name,id"},
		Examples: [][2]string{
			{"linctl teams", "list teams, from the cache when fresh"},
			{"linctl teams --refresh", "refetch teams and update the cache"},
			{"linctl teams -o json -a description", "include descriptions, as JSON"},
		},
		Fetch: func(ctx context.Context, _ *cli.Command, l *lookup.Lookup) (json.RawMessage, error) {
			return l.Teams(ctx)
		},
	}
	return rcb.Build()
}

// UsersCommandBuilder lists users.
func UsersCommandBuilder() *cli.Command {
	rcb := &ReferenceCommandBuilder{
		Name:         "users",
		Usage:        "list users",
		UsageText:    "linctl users [options]",
		DefaultAttrs: []string{"name,displayName,email,active,id"},
		Examples: [][2]string{
			{"linctl users", "list users"},
			{"linctl users -f active=true -s name", "active users sorted by name"},
		},
		Fetch: func(ctx context.Context, _ *cli.Command, l *lookup.Lookup) (json.RawMessage, error) {
			return l.Users(ctx)
		},
	}
	return rcb.Build()
}

// StatusesCommandBuilder lists the workflow states of one team.
func StatusesCommandBuilder() *cli.Command {
	rcb := &ReferenceCommandBuilder{
		Name:         "statuses",
		Aliases:      []string{"states"},
		Usage:        "list workflow statuses of a team",
		UsageText:    "linctl statuses --team <id|key|name> [options]",
		DefaultAttrs: []string{"name,type,color,position,id"},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "team",
				Usage: "team id, key or name (required)",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator, NotBlankValidator)
				},
			},
		},
		Examples: [][2]string{
			{"linctl statuses --team ENG", "statuses of the ENG team"},
			{"linctl statuses --team ENG -s position", "in workflow order"},
		},
		Fetch: func(ctx context.Context, cmd *cli.Command, l *lookup.Lookup) (json.RawMessage, error) {
			if !cmd.IsSet("team") {
				return nil, errMissingTeam
			}
			id, err := l.TeamID(ctx, cmd.String("team"))
			if err != nil {
				return nil, err
			}
			return l.Statuses(ctx, id)
		},
	}
	return rcb.Build()
}

// LabelsCommandBuilder lists issue or project labels.
func LabelsCommandBuilder() *cli.Command {
	rcb := &ReferenceCommandBuilder{
		Name:         "labels",
		Usage:        "list issue or project labels",
		UsageText:    "linctl labels [--project] [options]",
		DefaultAttrs: []string{"name,color,parent.name:parent,id"},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "project",
				Usage:       "list project labels instead of issue labels",
				HideDefault: true,
			},
		},
		Examples: [][2]string{
			{"linctl labels", "issue labels"},
			{"linctl labels --project", "project labels"},
			{"linctl labels -f parent=Area", "labels in the Area group"},
		},
		Fetch: func(ctx context.Context, cmd *cli.Command, l *lookup.Lookup) (json.RawMessage, error) {
			scope := lookup.IssueLabels
			if cmd.Bool("project") {
				scope = lookup.ProjectLabels
			}
			return l.Labels(ctx, scope)
		},
	}
	return rcb.Build()
}
