package export

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// ExportBuilder configures an export with chained calls:
//
//	err := NewExportBuilder().
//	    WithFormat(FormatCSV).
//	    WithFilePath("/path/to/wishlist.csv").
//	    WithOverwrite(true).
//	    Export(lines)
type ExportBuilder struct {
	format     Format
	filePath   string
	prettyJSON bool
	overwrite  bool
	writer     io.Writer
	useWriter  bool
}

// NewExportBuilder creates a builder for text exports.
func NewExportBuilder() *ExportBuilder {
	return &ExportBuilder{format: FormatText}
}

// WithFormat sets the export format.
func (b *ExportBuilder) WithFormat(format Format) *ExportBuilder {
	b.format = format
	return b
}

// WithFilePath sets the output file. The directory is created if needed.
func (b *ExportBuilder) WithFilePath(filePath string) *ExportBuilder {
	b.filePath = filePath
	b.useWriter = false
	return b
}

// WithWriter writes to w instead of a file.
func (b *ExportBuilder) WithWriter(w io.Writer) *ExportBuilder {
	b.writer = w
	b.useWriter = true
	return b
}

// WithPrettyJSON indents JSON output.
func (b *ExportBuilder) WithPrettyJSON(pretty bool) *ExportBuilder {
	b.prettyJSON = pretty
	return b
}

// WithOverwrite allows replacing an existing file.
func (b *ExportBuilder) WithOverwrite(overwrite bool) *ExportBuilder {
	b.overwrite = overwrite
	return b
}

// WithTimestampedFilename writes to dir/prefix_YYYYMMDD_HHMMSS.ext.
func (b *ExportBuilder) WithTimestampedFilename(dir, prefix string) *ExportBuilder {
	return b.WithFilePath(filepath.Join(dir, GenerateFilename(prefix, b.format)))
}

// FilePath returns the configured output file.
func (b *ExportBuilder) FilePath() string {
	return b.filePath
}

// Build returns the file options of the builder.
func (b *ExportBuilder) Build() Options {
	return Options{
		Format:     b.format,
		FilePath:   b.filePath,
		PrettyJSON: b.prettyJSON,
		Overwrite:  b.overwrite,
	}
}

// Export writes lines with the configured settings.
func (b *ExportBuilder) Export(lines []wishlist.ExportLine) error {
	if err := b.validate(); err != nil {
		return err
	}

	if b.useWriter {
		return ExportToWriter(b.writer, b.format, lines, b.prettyJSON)
	}
	return NewExporter(b.Build()).Export(lines)
}

func (b *ExportBuilder) validate() error {
	if !b.useWriter && b.filePath == "" {
		return fmt.Errorf("either file path or writer must be set")
	}

	switch b.format {
	case FormatText, FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("unsupported export format: %s", b.format)
	}
	return nil
}
