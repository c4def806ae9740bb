// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/linctl/internal/attrs"
	"github.com/staranto/linctl/internal/config"
)

// DumpExamples renders a table of example command usages.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}
	if w == nil {
		w = os.Stdout
	}

	var rows [][]string
	for _, ex := range examples {
		rows = append(rows, []string{ex[0], ex[1]})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers("Command", "Description").
		BorderHeader(false).
		Rows(rows...)

	fmt.Fprintln(w, t)
}

// SliceDiceSpit filters, transforms, sorts and renders a JSON dataset
// according to the command's output flags. parent is a gjson path selecting
// the array of rows inside raw; empty means raw is the array.
func SliceDiceSpit(raw json.RawMessage,
	al attrs.AttrList,
	cmd *cli.Command,
	parent string,
	w io.Writer) error {

	if w == nil {
		w = os.Stdout
	}

	// If raw, just dump it and go home.
	output := cmd.String("output")
	if output == "raw" {
		return RawWriter(raw, cmd.Bool("color"), w)
	}

	fullDataset := gjson.ParseBytes(raw)
	if parent != "" {
		fullDataset = fullDataset.Get(parent)
	}

	// A single object is a one row dataset.
	if fullDataset.IsObject() {
		fullDataset = gjson.Parse("[" + fullDataset.Raw + "]")
	}

	if len(al) == 0 {
		al = DefaultAttrs(fullDataset)
		log.Debugf("derived attrs: %v", al.String())
	}

	// Filter first so the remaining steps work on a smaller dataset.
	filteredDataset := FilterDataset(fullDataset, al, cmd.String("filter"))

	for _, row := range filteredDataset {
		for i := range al {
			if al[i].TransformSpec != "" {
				row[al[i].OutputKey] = al[i].Transform(row[al[i].OutputKey])
			}
		}
	}

	SortDataset(filteredDataset, cmd.String("sort"))

	switch output {
	case "json":
		return JSONWriter(filteredDataset, al, w)
	case "yaml":
		return YAMLWriter(filteredDataset, al, w)
	default:
		TableWriter(filteredDataset, al, cmd.Bool("color"), cmd.Bool("titles"), w)
	}
	return nil
}

// RawWriter writes raw as indented JSON, colorized when color is set.
func RawWriter(raw json.RawMessage, color bool, w io.Writer) error {
	doc := pretty.Pretty(raw)
	if color {
		doc = pretty.Color(doc, nil)
	}
	_, err := w.Write(doc)
	return err
}

// JSONWriter writes the dataset as a JSON array. Keys in each object follow
// the attr order.
func JSONWriter(resultSet []map[string]interface{}, al attrs.AttrList, w io.Writer) error {
	included := al.Included()

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, result := range resultSet {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, attr := range included {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(attr.OutputKey)
			if err != nil {
				return fmt.Errorf("failed to marshal key: %w", err)
			}
			v, err := json.Marshal(result[attr.OutputKey])
			if err != nil {
				return fmt.Errorf("failed to marshal %s: %w", attr.OutputKey, err)
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	_, err := w.Write(pretty.Pretty(buf.Bytes()))
	return err
}

// YAMLWriter writes the dataset as a YAML sequence, keys in attr order.
func YAMLWriter(resultSet []map[string]interface{}, al attrs.AttrList, w io.Writer) error {
	included := al.Included()

	doc := make([]yaml.MapSlice, 0, len(resultSet))
	for _, result := range resultSet {
		item := make(yaml.MapSlice, 0, len(included))
		for _, attr := range included {
			item = append(item, yaml.MapItem{Key: attr.OutputKey, Value: result[attr.OutputKey]})
		}
		doc = append(doc, item)
	}

	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// TableWriter renders the result set in a tabular form honoring color,
// titles and padding options.
func TableWriter(
	resultSet []map[string]interface{},
	al attrs.AttrList,
	color bool,
	titles bool,
	w io.Writer) {

	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	included := al.Included()

	var rows [][]string
	for _, result := range resultSet {
		row := make([]string, 0, len(included))
		for _, attr := range included {
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)
	}

	pad, _ := config.GetInt("padding", 0)

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Rows(rows...)

	if titles {
		headers := make([]string, 0, len(included))
		for _, attr := range included {
			headers = append(headers, attr.OutputKey)
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// DefaultAttrs builds an attr per top level scalar member of the first row.
func DefaultAttrs(dataset gjson.Result) attrs.AttrList {
	var al attrs.AttrList

	first := dataset.Get("0")
	if !first.IsObject() {
		return al
	}

	first.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() || value.IsArray() {
			return true
		}
		al = append(al, attrs.Attr{
			Key:       gjson.Escape(key.String()),
			OutputKey: key.String(),
			Include:   true,
		})
		return true
	})
	return al
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		// Linear numbers worth showing (positions, counts) are whole.
		return fmt.Sprintf("%.0f", value)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
