package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formatter renders a command result.
type Formatter interface {
	Format(data any) (string, error)
}

// NewFormatter returns a Formatter for format. Matching is case-insensitive
// and an empty format selects the table.
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return tableFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatYAML:
		return yamlFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

// tableFormatter prints a struct as aligned "Label:  value" lines.
// Labels come from the `table` struct tag, falling back to the field name.
type tableFormatter struct{}

func (tableFormatter) Format(data any) (string, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		fmt.Fprintln(w, data)
	} else {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			label := t.Field(i).Tag.Get("table")
			if label == "-" {
				continue
			}
			if label == "" {
				label = t.Field(i).Name
			}
			fmt.Fprintf(w, "%s:\t%v\n", label, v.Field(i).Interface())
		}
	}

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("formatting table: %w", err)
	}
	return buf.String(), nil
}

type jsonFormatter struct{}

func (jsonFormatter) Format(data any) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting JSON: %w", err)
	}
	return string(b) + "\n", nil
}

type yamlFormatter struct{}

func (yamlFormatter) Format(data any) (string, error) {
	b, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("formatting YAML: %w", err)
	}
	return string(b), nil
}
