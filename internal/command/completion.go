// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `# bash completion for linctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_linctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "teams users statuses labels query workspace ws cache config completion --cache-ttl --no-cache --help" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --no-color --filter -f --output -o --sort -s --titles -t --no-titles"
    local opts

    case "$cmd" in
        teams|users)
            opts="$common --refresh -r --examples"
            ;;
        statuses|states)
            opts="$common --refresh -r --examples --team"
            ;;
        labels)
            opts="$common --refresh -r --examples --project"
            ;;
        query|q)
            opts="$common --var --path --examples -"
            ;;
        workspace|ws)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                opts="add list ls switch current remove rm"
            elif [[ "${COMP_WORDS[2]}" == "add" ]]; then
                opts="--key"
            else
                opts="$common"
            fi
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                opts="status clear"
            elif [[ "$prev" == "--type" ]]; then
                opts="teams users statuses labels"
            else
                opts="$common --type"
            fi
            ;;
        config)
            opts="show set-key"
            ;;
        completion)
            opts="bash zsh"
            ;;
        *)
            opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _linctl linctl
`

const zshCompletionScript = `#compdef linctl

_linctl() {
  local -a cmds
  cmds=(
    'teams:list teams'
    'users:list users'
    'statuses:list workflow statuses of a team'
    'labels:list issue or project labels'
    'query:run a raw GraphQL query or mutation'
    'workspace:manage named Linear workspaces'
    'cache:inspect or clear the local cache'
    'config:show settings or store an API key'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'linctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    teams|users)
      _arguments -C \
        $common \
        '(-r --refresh)'{-r,--refresh}'[ignore cached data]' \
        '--examples[show examples]'
      ;;
    statuses|states)
      _arguments -C \
        $common \
        '(-r --refresh)'{-r,--refresh}'[ignore cached data]' \
        '--team[team id, key or name]:team' \
        '--examples[show examples]'
      ;;
    labels)
      _arguments -C \
        $common \
        '(-r --refresh)'{-r,--refresh}'[ignore cached data]' \
        '--project[project labels]' \
        '--examples[show examples]'
      ;;
    query|q)
      _arguments -C \
        $common \
        '*--var[variable name=value]:var' \
        '--path[rows path below data]:path' \
        '--examples[show examples]' \
        '1:document'
      ;;
    workspace|ws)
      _arguments '2: :((add list ls switch current remove rm))' '*::arg:->rest'
      ;;
    cache)
      _arguments '2: :((status clear))' '--type[cache type]:type:(teams users statuses labels)'
      ;;
    config)
      _arguments '2: :((show set-key))'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _linctl linctl
`

// CompletionCommandAction prints the completion script for the named shell,
// falling back to $SHELL.
func CompletionCommandAction(_ context.Context, cmd *cli.Command) error {
	w := stdout(cmd)

	shell := cmd.Args().First()
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("unsupported shell %q. Usage: linctl completion [bash|zsh]", shell)
	}
	return nil
}

// CompletionCommandBuilder returns the completion command.
func CompletionCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "linctl completion [bash|zsh]",
		Action:    CompletionCommandAction,
	}
}
