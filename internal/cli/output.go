package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/schedule/internal/schedule"
)

// OutputFormat specifies the list output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'yaml')", s)
	}
}

// WriteRows writes list rows in the specified format
func WriteRows(w io.Writer, rows []schedule.Row, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return writeYAML(w, rows)
	case FormatText:
		return writeText(w, rows)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, rows []schedule.Row) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

func writeYAML(w io.Writer, rows []schedule.Row) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(rows); err != nil {
		return err
	}
	return encoder.Close()
}

// writeText outputs the tab-separated table, header first
func writeText(w io.Writer, rows []schedule.Row) error {
	if _, err := fmt.Fprintln(w, "ID\tSTART\tEND\tSUBJECT"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Start, r.End, r.Subject); err != nil {
			return err
		}
	}
	return nil
}
