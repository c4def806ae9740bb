// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/linctl/internal/attrs"
)

// EnvFilterDelim overrides the "," between filter expressions.
const EnvFilterDelim = "LINCTL_FILTER_DELIM"

// filterRegex splits a filter expression into key, operator and target. The
// operator may be negated with a leading !.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~><@/])(.*)$`)

// Filter represents a single parsed --filter expression including the key,
// operand, optional negation and target value.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Invalid specs (unsupported operand or malformed expression) are skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	delim := ","
	if d, ok := os.LookupEnv(EnvFilterDelim); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(filterSpec)

		if parts == nil || parts[1] == "" {
			log.Warnf("invalid filter: %s", filterSpec)
			continue
		}

		negate := strings.HasPrefix(parts[2], "!")
		if negate {
			parts[2] = strings.TrimPrefix(parts[2], "!")
		}

		filters = append(filters, Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  negate,
			Operand: parts[2],
			Target:  parts[3],
		})
	}

	return filters
}

// FilterDataset returns the rows of candidates matching every filter in spec,
// each row reduced to the attrs keyed by output key.
func FilterDataset(candidates gjson.Result, al attrs.AttrList, spec string) []map[string]interface{} {
	//nolint:prealloc // Don't prealloc because we don't know what len will be.
	var filteredResults []map[string]interface{}

	filters := BuildFilters(spec)

	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, al, filters) {
			continue
		}

		// Transforms are applied later by SliceDiceSpit.
		result := make(map[string]interface{})
		for _, attr := range al {
			if attr.Key == "*" {
				continue
			}
			result[attr.OutputKey] = candidate.Get(attr.Key).Value()
		}
		filteredResults = append(filteredResults, result)
	}

	return filteredResults
}

// applyFilters returns true if the candidate row matches all of the provided
// filters. A filter key that is not an attr is treated as a gjson path.
func applyFilters(candidate gjson.Result, al attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		key := filter.Key
		if attr, ok := al.Lookup(filter.Key); ok {
			key = attr.Key
		}

		value := candidate.Get(key)
		if !value.Exists() || value.Type == gjson.Null {
			return false
		}

		var result bool
		switch value.Type {
		case gjson.String:
			result = checkStringOperand(value.String(), filter)
		case gjson.True, gjson.False:
			result = checkStringOperand(strconv.FormatBool(value.Bool()), filter)
		case gjson.Number:
			result = checkNumberOperand(value.Float(), filter)
		default:
			result = checkContainsOperand(value.Value(), filter)
		}

		if !result {
			return false
		}
	}

	return true
}

// checkContainsOperand evaluates a membership style filter (operand '@')
// against slice or map values.
func checkContainsOperand(value interface{}, filter Filter) bool {
	if filter.Operand != "@" {
		log.Warnf("operand %s not supported for %s", filter.Operand, filter.Key)
		return false
	}

	var found bool
	switch val := value.(type) {
	case []interface{}:
		for _, item := range val {
			if fmt.Sprintf("%v", item) == filter.Target {
				found = true
				break
			}
		}
	case map[string]interface{}:
		_, found = val[filter.Target]
	default:
		log.Warnf("unsupported type for contains filtering: %T", value)
		return false
	}
	return found == !filter.Negate
}

// checkNumberOperand compares numerically when the target is a number and
// falls back to string comparison otherwise.
func checkNumberOperand(value float64, filter Filter) bool {
	target, err := strconv.ParseFloat(filter.Target, 64)
	if err != nil {
		return checkStringOperand(strconv.FormatFloat(value, 'f', -1, 64), filter)
	}

	switch filter.Operand {
	case "=":
		return (value == target) == !filter.Negate
	case ">":
		return (value > target) == !filter.Negate
	case "<":
		return (value < target) == !filter.Negate
	default:
		return checkStringOperand(strconv.FormatFloat(value, 'f', -1, 64), filter)
	}
}

// checkStringOperand evaluates a string comparison style filter against the
// provided value using the operand semantics.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return (value == filter.Target) == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Target) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Target) == !filter.Negate
	case ">":
		return (value > filter.Target) == !filter.Negate
	case "<":
		return (value < filter.Target) == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Target) == !filter.Negate
	case "/":
		re, err := regexp.Compile(filter.Target)
		if err != nil {
			log.Warnf("invalid regex: %s", filter.Target)
			return false
		}
		return re.MatchString(value) == !filter.Negate
	default:
		log.Warnf("unsupported filtering operand: %s", filter.Operand)
		return false
	}
}
