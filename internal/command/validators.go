// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"
)

var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}

// GlobalFlagsValidator checks flag combinations that no single validator can.
func GlobalFlagsValidator(_ context.Context, c *cli.Command) error {
	if c.IsSet("titles") && c.Bool("titles") && c.String("output") != "text" {
		return fmt.Errorf("--titles requires --output text, got %s", c.String("output"))
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if s, ok := value.(string); ok && strings.HasPrefix(s, "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

// NotBlankValidator rejects empty or whitespace only values.
func NotBlankValidator(value any) error {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}

func OutputValidator(value any) error {
	s, _ := value.(string)
	if !slices.Contains(validOutputFlagValues, s) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}
