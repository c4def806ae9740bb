// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/linctl/internal/config"
)

var lengthRegex = regexp.MustCompile(`-?\d+`)

// Attr represents each of the keys to be included in the output. Key is a
// gjson path into one node of the result, e.g. "name" or "parent.name".
type Attr struct {
	// The JSON key to extract from the result JSON object.
	Key string `yaml:"key"`
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool `yaml:"include"`
	// The key to use in the output. This will also be used as the column title
	// when output=text.
	OutputKey string `yaml:"outputKey"`
	// Transformation spec to apply to the output value.
	TransformSpec string `yaml:"transformSpec"`
}

// Transform applies TransformSpec to value. Only strings are transformed.
//
//	t  convert an RFC3339 timestamp to the configured timezone
//	l  lower case
//	u  upper case
//	N  truncate to N characters; -N elides the middle instead
func (a *Attr) Transform(value interface{}) interface{} {
	result, ok := value.(string)
	if !ok {
		return value
	}

	// Convert UTC time to local.
	if strings.ContainsAny(a.TransformSpec, "tT") {
		tz, _ := config.GetString("timezone", "")
		if tz == "" {
			tz = os.Getenv("TZ")
		}

		// Only convert when told which zone to use.
		if tz != "" {
			loc, err := time.LoadLocation(tz)
			if err == nil {
				t, err := time.Parse(time.RFC3339, result)
				if err == nil {
					result = t.In(loc).Format("2006-01-02T15:04:05MST")
				} else {
					log.Debugf("failed to parse time: %s", result)
				}
			} else {
				log.Debugf("unknown timezone: %s", tz)
			}
		}
	}

	// The case transformation that appears last wins, so an attr's own spec
	// overrides a global one prepended to it. IOW... --attrs '*::U,name::l'
	// will be lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same rule for length, the last one wins.
	if match := lengthRegex.FindAllString(a.TransformSpec, -1); len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		abs := int(math.Abs(float64(l)))
		runes := []rune(result)
		if abs > 0 && len(runes) > abs {
			if l < 0 {
				half := abs/2 - 1
				if half < 1 {
					half = 1
				}
				result = string(runes[:half]) + ".." + string(runes[len(runes)-half:])
			} else {
				result = string(runes[:l])
			}
		}
	}

	return result
}

// AttrList is the ordered set of columns a command emits.
type AttrList []Attr

// String returns the list in --attrs flag form.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses a comma separated --attrs value and merges it into the list.
//
// Each spec is key[:output[:transform]]. A leading ! keeps the attr for
// filtering and sorting but hides it from output. The output key defaults to
// the last segment of the dotted key. A spec naming an attr already in the
// list updates that attr in place.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

	specs := strings.Split(value, ",")
specloop:
	for _, spec := range specs {
		attr := Attr{
			Include: true,
		}

		fields := strings.Split(spec, ":")

		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		attr.Key = strings.TrimPrefix(attr.Key, ".")

		if attr.Key == "" {
			return fmt.Errorf("invalid attr spec: '%s'", spec)
		}

		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			if fields[outputIdx] != "" {
				attr.OutputKey = strings.TrimSpace(fields[outputIdx])
			} else {
				attr.OutputKey = attr.Key
			}
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the transform of the "*" attr, if any, to
// every attr in the list.
func (a *AttrList) SetGlobalTransformSpec() error {
	spec := ""

	// Only the first global spec is honored.
	for i := range *a {
		if (*a)[i].Key == "*" {
			spec = (*a)[i].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}

	return nil
}

// Type names the flag value type for help output.
func (a *AttrList) Type() string {
	return "list"
}

// Included returns only the attrs that are emitted.
func (a AttrList) Included() AttrList {
	result := make(AttrList, 0, len(a))
	for _, attr := range a {
		if attr.Include {
			result = append(result, attr)
		}
	}
	return result
}

// Lookup returns the attr whose output key, or failing that key, is name.
func (a AttrList) Lookup(name string) (Attr, bool) {
	for _, attr := range a {
		if attr.OutputKey == name {
			return attr, true
		}
	}
	for _, attr := range a {
		if attr.Key == name {
			return attr, true
		}
	}
	return Attr{}, false
}
