// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/linctl/internal/cache"
)

// maxPages bounds connection pagination.
const maxPages = 50

var (
	// ErrEmptyTeamID is returned by Statuses when no team id is given.
	ErrEmptyTeamID = errors.New("team id cannot be empty")
	// ErrUnknownScope is returned by ParseLabelScope.
	ErrUnknownScope = errors.New("unknown label scope")
	// ErrNotFound is returned when the API answers with no such entity.
	ErrNotFound = errors.New("not found")
)

// Querier is the part of api.Client the lookups need.
type Querier interface {
	Query(ctx context.Context, query string, vars map[string]any) (json.RawMessage, error)
}

// LabelScope selects between issue and project labels. It is also the key the
// labels are cached under.
type LabelScope string

const (
	IssueLabels   LabelScope = "issue"
	ProjectLabels LabelScope = "project"
)

// ParseLabelScope maps "issue" or "project" onto a LabelScope.
func ParseLabelScope(s string) (LabelScope, error) {
	switch LabelScope(strings.ToLower(strings.TrimSpace(s))) {
	case IssueLabels:
		return IssueLabels, nil
	case ProjectLabels:
		return ProjectLabels, nil
	}
	return "", fmt.Errorf("%w: '%s'. Valid scopes: issue, project", ErrUnknownScope, s)
}

// Lookup answers reference data requests from the cache when it can.
type Lookup struct {
	q       Querier
	store   *cache.Store
	refresh bool
}

// Option customizes a Lookup.
type Option func(*Lookup)

// WithStore sets the cache. A nil store disables caching.
func WithStore(s *cache.Store) Option {
	return func(l *Lookup) {
		l.store = s
	}
}

// WithRefresh skips cache reads. Fetched data is still written back.
func WithRefresh(refresh bool) Option {
	return func(l *Lookup) {
		l.refresh = refresh
	}
}

// New returns a Lookup that queries q.
func New(q Querier, opts ...Option) *Lookup {
	l := &Lookup{q: q}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Teams returns every team as a JSON array.
func (l *Lookup) Teams(ctx context.Context) (json.RawMessage, error) {
	return l.whole(ctx, cache.Teams, func(ctx context.Context) (json.RawMessage, error) {
		return l.paginate(ctx, teamsQuery, "data.teams")
	})
}

// Users returns every user as a JSON array.
func (l *Lookup) Users(ctx context.Context) (json.RawMessage, error) {
	return l.whole(ctx, cache.Users, func(ctx context.Context) (json.RawMessage, error) {
		return l.paginate(ctx, usersQuery, "data.users")
	})
}

// Statuses returns the workflow states of one team as a JSON array. Each
// team is cached under its own key.
func (l *Lookup) Statuses(ctx context.Context, teamID string) (json.RawMessage, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, ErrEmptyTeamID
	}

	return l.keyed(ctx, cache.Statuses, teamID, func(ctx context.Context) (json.RawMessage, error) {
		doc, err := l.q.Query(ctx, statusesQuery, map[string]any{"teamId": teamID})
		if err != nil {
			return nil, err
		}

		team := gjson.GetBytes(doc, "data.team")
		if !team.IsObject() {
			return nil, fmt.Errorf("team '%s': %w", teamID, ErrNotFound)
		}
		return nodes(team.Get("states.nodes")), nil
	})
}

// Labels returns the labels of scope as a JSON array.
func (l *Lookup) Labels(ctx context.Context, scope LabelScope) (json.RawMessage, error) {
	var query, path string
	switch scope {
	case IssueLabels:
		query, path = issueLabelsQuery, "data.issueLabels"
	case ProjectLabels:
		query, path = projectLabelsQuery, "data.projectLabels"
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownScope, scope)
	}

	return l.keyed(ctx, cache.Labels, string(scope), func(ctx context.Context) (json.RawMessage, error) {
		return l.paginate(ctx, query, path)
	})
}

type fetchFunc func(ctx context.Context) (json.RawMessage, error)

func (l *Lookup) whole(ctx context.Context, t cache.Type, fetch fetchFunc) (json.RawMessage, error) {
	if l.store != nil && !l.refresh {
		if data, ok := l.store.Get(t); ok {
			return data, nil
		}
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if l.store != nil {
		if err := l.store.Set(t, data); err != nil {
			log.WithError(err).Warnf("failed to write %s cache", t)
		}
	}
	return data, nil
}

func (l *Lookup) keyed(ctx context.Context, t cache.Type, key string, fetch fetchFunc) (json.RawMessage, error) {
	if l.store != nil && !l.refresh {
		if data, ok := l.store.GetKeyed(t, key); ok {
			return data, nil
		}
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if l.store != nil {
		if err := l.store.SetKeyed(t, key, data); err != nil {
			log.WithError(err).Warnf("failed to write %s cache key %q", t, key)
		}
	}
	return data, nil
}

// paginate follows the connection at path until hasNextPage is false and
// returns the concatenated nodes.
func (l *Lookup) paginate(ctx context.Context, query, path string) (json.RawMessage, error) {
	var all []string

	page := map[string]any{}

	for n := 0; ; n++ {
		if n == maxPages {
			log.Warnf("stopped after %d pages of %s", maxPages, path)
			break
		}

		doc, err := l.q.Query(ctx, query, page)
		if err != nil {
			return nil, err
		}

		conn := gjson.GetBytes(doc, path)
		conn.Get("nodes").ForEach(func(_, node gjson.Result) bool {
			all = append(all, node.Raw)
			return true
		})

		if !conn.Get("pageInfo.hasNextPage").Bool() {
			break
		}
		cursor := conn.Get("pageInfo.endCursor").String()
		if cursor == "" {
			break
		}
		log.Debugf("fetching next page of %s after %s", path, cursor)
		page["after"] = cursor
	}

	return join(all), nil
}

// nodes returns r as a JSON array, or an empty array when r is not one.
func nodes(r gjson.Result) json.RawMessage {
	if !r.IsArray() {
		return json.RawMessage("[]")
	}
	return json.RawMessage(r.Raw)
}

func join(raw []string) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('[')
	buf.WriteString(strings.Join(raw, ","))
	buf.WriteByte(']')
	return buf.Bytes()
}

// TeamID resolves ref, a team id, key or name, to a team id. Keys and names
// match case insensitively against the (cached) team list.
func (l *Lookup) TeamID(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmptyTeamID
	}

	teams, err := l.Teams(ctx)
	if err != nil {
		return "", err
	}

	var id string
	gjson.ParseBytes(teams).ForEach(func(_, team gjson.Result) bool {
		if team.Get("id").String() == ref ||
			strings.EqualFold(team.Get("key").String(), ref) ||
			strings.EqualFold(team.Get("name").String(), ref) {
			id = team.Get("id").String()
			return false
		}
		return true
	})

	if id == "" {
		return "", fmt.Errorf("team '%s': %w. Use 'linctl teams' to see available teams", ref, ErrNotFound)
	}
	return id, nil
}
