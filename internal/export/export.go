// Package export writes the wishlist in text, CSV or JSON form.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// Format represents the export format.
type Format string

const (
	// FormatText writes "{deficit} {name}" lines, importable as a decklist.
	FormatText Format = "text"
	// FormatCSV represents CSV export format.
	FormatCSV Format = "csv"
	// FormatJSON represents JSON export format.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. Empty means FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText, "txt":
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errs.Configuration("export.format", s, "expected text, csv or json")
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// Line is the serialized form of a wishlist export line.
type Line struct {
	Name    string  `json:"name"`
	Deficit int     `json:"deficit"`
	Score   float64 `json:"score"`
}

// Lines converts wishlist export lines, keeping their order.
func Lines(lines []wishlist.ExportLine) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{Name: l.Name, Deficit: l.Deficit, Score: l.Score}
	}
	return out
}

// Options holds configuration for export operations.
type Options struct {
	Format     Format
	FilePath   string
	PrettyJSON bool
	Overwrite  bool
}

// Exporter writes wishlist exports to files.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export writes lines to the configured file.
func (e *Exporter) Export(lines []wishlist.ExportLine) (err error) {
	file, err := e.createFile()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return ExportToWriter(file, e.opts.Format, lines, e.opts.PrettyJSON)
}

// createFile creates the output file, handling overwrite settings.
func (e *Exporter) createFile() (*os.File, error) {
	if e.opts.FilePath == "" {
		return nil, fmt.Errorf("no output file set")
	}

	dir := filepath.Dir(e.opts.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(e.opts.FilePath); err == nil && !e.opts.Overwrite {
		return nil, fmt.Errorf("file already exists: %s (use overwrite option to replace)", e.opts.FilePath)
	}

	file, err := os.Create(e.opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// ExportToWriter writes lines to w in format.
func ExportToWriter(w io.Writer, format Format, lines []wishlist.ExportLine, prettyJSON bool) error {
	switch format {
	case FormatText, "":
		return writeText(w, lines)
	case FormatCSV:
		return writeCSV(w, lines)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		if prettyJSON {
			encoder.SetIndent("", "  ")
		}
		if err := encoder.Encode(Lines(lines)); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func writeText(w io.Writer, lines []wishlist.ExportLine) error {
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%d %s\n", l.Deficit, l.Name); err != nil {
			return fmt.Errorf("failed to write wishlist: %w", err)
		}
	}
	return nil
}

func writeCSV(w io.Writer, lines []wishlist.ExportLine) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"name", "deficit", "score"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, l := range lines {
		row := []string{l.Name, strconv.Itoa(l.Deficit), strconv.FormatFloat(l.Score, 'f', 3, 64)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// GenerateFilename generates a default filename based on the export type and format.
func GenerateFilename(exportType string, format Format) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", exportType, timestamp, format.Extension())
}
