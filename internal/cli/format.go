package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

type table struct {
	headers []string
	rows    [][]string
	footer  string
}

func (t *table) addRow(values ...string) {
	t.rows = append(t.rows, values)
}

func (t *table) format() string {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, value := range row {
			if i < len(widths) && len(value) > widths[i] {
				widths[i] = len(value)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(values []string) {
		for i, value := range values {
			if i != 0 {
				sb.WriteString("  ")
			}
			if i == len(values)-1 {
				sb.WriteString(value)
			} else {
				sb.WriteString(value)
				sb.WriteString(strings.Repeat(" ", widths[i]-len(value)))
			}
		}
		sb.WriteRune('\n')
	}

	writeRow(t.headers)
	for _, row := range t.rows {
		writeRow(row)
	}
	sb.WriteString(t.footer)
	return sb.String()
}

// render writes v as indented JSON when --output=json, otherwise the table
// built by toTable.
func (c *Cli) render(cmd *cobra.Command, v any, toTable func() *table) error {
	switch c.output {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "table", "":
		_, err := fmt.Fprint(cmd.OutOrStdout(), toTable().format())
		return err
	default:
		return fmt.Errorf("unsupported output format %q", c.output)
	}
}

func formatUUID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", value, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", value, err)
	}
	return &id, nil
}
