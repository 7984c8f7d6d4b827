package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/snek5000/snekctl/internal/simdir"
)

// Format selects how a report is written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat returns the Format named by s (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json or yaml)", s)
	}
}

// Record is the status of one simulation directory.
type Record struct {
	Path    string        `json:"path" yaml:"path"`
	Code    int           `json:"code" yaml:"code"`
	Status  simdir.Status `json:"status" yaml:"status"`
	Message string        `json:"message" yaml:"message"`
}

// NewRecord builds the record of dir in the given status.
func NewRecord(dir string, status simdir.Status) Record {
	return Record{
		Path:    dir,
		Code:    status.Code(),
		Status:  status,
		Message: status.Message(),
	}
}

// Config controls report rendering.
type Config struct {
	Format       Format
	ColorEnabled bool // Enable colored output using ANSI escape codes.
}

var statusHeader = table.Row{
	"",
	"Path",
	"Code",
	"Status",
	"Message",
}

// Write renders records to w.
func Write(w io.Writer, records []Record, cfg Config) error {
	switch cfg.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		_, err := fmt.Fprintln(w, renderTable(records, cfg.ColorEnabled))
		return err
	default:
		return fmt.Errorf("unknown output format %q", cfg.Format)
	}
}

func renderTable(records []Record, colorEnabled bool) string {
	statusTable := table.NewWriter()
	statusTable.AppendHeader(statusHeader)

	for _, r := range records {
		symbol, name := StatusSymbol(r.Status), r.Status.String()
		if colorEnabled {
			symbol = StatusColorize(symbol, r.Status)
			name = StatusColorize(name, r.Status)
		}
		statusTable.AppendRow(table.Row{
			symbol,
			r.Path,
			r.Code,
			name,
			r.Message,
		})
	}

	return statusTable.Render()
}
