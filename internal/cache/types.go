// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"errors"
	"fmt"
	"strings"
)

// Type identifies one of the fixed set of cached entity types.
type Type int

const (
	Teams Type = iota
	Users
	Statuses
	Labels
)

// ErrUnknownType is returned by ParseType for names outside the closed set.
var ErrUnknownType = errors.New("unknown cache type")

var allTypes = []Type{Teams, Users, Statuses, Labels}

// AllTypes returns every cache type in display order.
func AllTypes() []Type {
	return append([]Type(nil), allTypes...)
}

// Filename is the name of the file backing t inside the cache directory.
func (t Type) Filename() string {
	switch t {
	case Teams:
		return "teams.json"
	case Users:
		return "users.json"
	case Statuses:
		return "statuses.json"
	case Labels:
		return "labels.json"
	}
	return fmt.Sprintf("unknown-%d.json", int(t))
}

// String returns the display name of t.
func (t Type) String() string {
	switch t {
	case Teams:
		return "Teams"
	case Users:
		return "Users"
	case Statuses:
		return "Statuses"
	case Labels:
		return "Labels"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a user supplied name onto a Type. Matching is case
// insensitive and "states" is accepted as an alias for statuses.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "teams":
		return Teams, nil
	case "users":
		return Users, nil
	case "statuses", "states":
		return Statuses, nil
	case "labels":
		return Labels, nil
	}
	return 0, fmt.Errorf("%w: '%s'. Valid types: teams, users, statuses, labels", ErrUnknownType, s)
}
