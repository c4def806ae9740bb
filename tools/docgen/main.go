// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/linctl/internal/command"
)

// Minimal doc generator. Walks the linctl command tree and generates:
//   - docs/commands/linctl-<cmd>.md, the canonical markdown
//   - docs/man/share/man1/linctl-<cmd>.1 via md2man
//   - docs/tldr/linctl-<cmd>.md from the command's examples

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, dir := range []string{commandsDir, manOutDir, tldrOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir %s: %v", dir, err)
		}
	}

	app, err := command.InitApp(context.Background(), []string{"linctl"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	for _, cmd := range app.Commands {
		if cmd.Hidden {
			continue
		}
		name := pageName(cmd)

		md := renderMarkdown(cmd)
		if err := writeFileIfChanged(filepath.Join(commandsDir, name+".md"), []byte(md), writeOnlyIfChanged); err != nil {
			fatalf("writing markdown for %s: %v", cmd.Name, err)
		}

		// Generate man page from full markdown
		manPath := filepath.Join(manOutDir, name+".1")
		if err := writeFileIfChanged(manPath, md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd.Name, err)
		}

		tldrPath := filepath.Join(tldrOutDir, name+".md")
		if err := writeFileIfChanged(tldrPath, []byte(buildTLDR(cmd)), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", cmd.Name, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no commands found")
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func pageName(cmd *cli.Command) string {
	return "linctl-" + cmd.Name
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

// renderMarkdown documents cmd and its subcommands in the man page layout
// md2man expects.
func renderMarkdown(cmd *cli.Command) string {
	var b strings.Builder

	b.WriteString("# " + pageName(cmd) + " 1\n\n")
	b.WriteString("## NAME\n\n")
	b.WriteString(pageName(cmd) + " - " + cmd.Usage + "\n\n")

	b.WriteString("## SYNOPSIS\n\n")
	if cmd.UsageText != "" {
		b.WriteString("`" + cmd.UsageText + "`\n\n")
	} else {
		b.WriteString("`linctl " + cmd.Name + " <command> [options]`\n\n")
	}

	if len(cmd.Aliases) > 0 {
		b.WriteString("## ALIASES\n\n")
		b.WriteString(strings.Join(cmd.Aliases, ", ") + "\n\n")
	}

	if len(cmd.Commands) > 0 {
		b.WriteString("## COMMANDS\n\n")
		for _, sub := range cmd.Commands {
			b.WriteString("**" + sub.Name + "**")
			if len(sub.Aliases) > 0 {
				b.WriteString(" (" + strings.Join(sub.Aliases, ", ") + ")")
			}
			b.WriteString("\n: " + sub.Usage + "\n")
			if sub.UsageText != "" {
				b.WriteString("  `" + sub.UsageText + "`\n")
			}
			b.WriteString("\n")
		}
	}

	if flags := visibleFlags(cmd); len(flags) > 0 {
		b.WriteString("## OPTIONS\n\n")
		for _, f := range flags {
			b.WriteString(flagLine(f) + "\n\n")
		}
	}

	if exs := command.Examples(cmd); len(exs) > 0 {
		b.WriteString("## EXAMPLES\n\n")
		for _, ex := range exs {
			b.WriteString(ex[1] + ":\n\n")
			b.WriteString("    " + ex[0] + "\n\n")
		}
	}

	return b.String()
}

func visibleFlags(cmd *cli.Command) []cli.Flag {
	var flags []cli.Flag
	for _, f := range cmd.Flags {
		if vf, ok := f.(cli.VisibleFlag); ok && !vf.IsVisible() {
			continue
		}
		flags = append(flags, f)
	}
	return flags
}

func flagLine(f cli.Flag) string {
	names := make([]string, 0, len(f.Names()))
	for _, n := range f.Names() {
		if len(n) == 1 {
			names = append(names, "-"+n)
		} else {
			names = append(names, "--"+n)
		}
	}

	line := "**" + strings.Join(names, ", ") + "**"
	if df, ok := f.(cli.DocGenerationFlag); ok {
		line += "\n: " + df.GetUsage()
	}
	return line
}

func buildTLDR(cmd *cli.Command) string {
	var b strings.Builder
	// Header
	b.WriteString("# " + pageName(cmd) + "\n\n")
	b.WriteString("> " + cmd.Usage + ".\n")
	b.WriteString("> More information: https://github.com/staranto/linctl.\n\n")

	exs := command.Examples(cmd)
	if len(exs) == 0 {
		// Fallback examples
		b.WriteString("- Show help for the command:\n\n")
		b.WriteString("`linctl " + cmd.Name + " --help`\n")
		return b.String()
	}

	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + sanitizeDesc(ex[1]) + ":\n\n")
		b.WriteString("`" + sanitizeCommand(ex[0]) + "`\n")
	}
	return b.String()
}

func sanitizeDesc(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Example"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sanitizeCommand(s string) string {
	// Compress runs of whitespace
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
