// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package lookup

const teamsQuery = `
query Teams($after: String) {
  teams(first: 100, after: $after) {
    nodes { id key name description }
    pageInfo { hasNextPage endCursor }
  }
}`

const usersQuery = `
query Users($after: String) {
  users(first: 100, after: $after) {
    nodes { id name displayName email active admin }
    pageInfo { hasNextPage endCursor }
  }
}`

const statusesQuery = `
query TeamStates($teamId: String!) {
  team(id: $teamId) {
    id
    name
    states {
      nodes { id name type color position description }
    }
  }
}`

const issueLabelsQuery = `
query IssueLabels($after: String) {
  issueLabels(first: 100, after: $after) {
    nodes { id name color description parent { name } }
    pageInfo { hasNextPage endCursor }
  }
}`

const projectLabelsQuery = `
query ProjectLabels($after: String) {
  projectLabels(first: 100, after: $after) {
    nodes { id name color description parent { name } }
    pageInfo { hasNextPage endCursor }
  }
}`
