// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/azure/azure-dev/cli/azd/pkg/output"
	"gopkg.in/yaml.v3"
)

// OutputFormat is the rendering used for command results
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates the value of an --output flag
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(value)); format {
	case FormatTable, FormatJSON, FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected table, json or yaml)", value)
	}
}

// Column maps a table heading to a field of the row type
func Column(heading, field string) output.Column {
	return output.Column{
		Heading:       heading,
		ValueTemplate: fmt.Sprintf("{{.%s}}", field),
	}
}

// PrintObject renders obj to w. Table output renders tableRows (a slice) with the given
// columns; JSON and YAML render obj itself.
func PrintObject(w io.Writer, format OutputFormat, obj interface{}, tableRows interface{}, columns []output.Column) error {
	switch format {
	case FormatJSON:
		formatter, err := output.NewFormatter(string(output.JsonFormat))
		if err != nil {
			return err
		}
		return formatter.Format(obj, w, nil)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(obj); err != nil {
			return err
		}
		return encoder.Close()
	case FormatTable:
		formatter, err := output.NewFormatter(string(output.TableFormat))
		if err != nil {
			return err
		}
		return formatter.Format(tableRows, w, output.TableFormatterOptions{Columns: columns})
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
