package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

var testLines = []wishlist.ExportLine{
	{Name: "Lightning Bolt", Deficit: 4, Score: 1},
	{Name: "Kaya's Guile, Promo", Deficit: 1, Score: 1.0 / 3},
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatText, "txt": FormatText, "CSV": FormatCSV, "json": FormatJSON}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseFormat("xml"); !errs.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestExportToWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportToWriter(&buf, FormatText, testLines, false); err != nil {
		t.Fatalf("ExportToWriter failed: %v", err)
	}

	want := "4 Lightning Bolt\n1 Kaya's Guile, Promo\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestExportToWriter_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportToWriter(&buf, FormatCSV, testLines, false); err != nil {
		t.Fatalf("ExportToWriter failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "name,deficit,score" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[2] != `"Kaya's Guile, Promo",1,0.333` {
		t.Errorf("unexpected row: %s", lines[2])
	}
}

func TestExportToWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportToWriter(&buf, FormatJSON, testLines, true); err != nil {
		t.Fatalf("ExportToWriter failed: %v", err)
	}

	var result []Line
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
	if len(result) != 2 || result[0].Name != "Lightning Bolt" || result[0].Deficit != 4 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestExporter_Overwrite(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "nested", "wishlist.txt")

	if err := NewExporter(Options{Format: FormatText, FilePath: filePath}).Export(testLines); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if err := NewExporter(Options{Format: FormatText, FilePath: filePath}).Export(testLines[:1]); err == nil {
		t.Error("expected error when file exists without overwrite")
	}

	if err := NewExporter(Options{Format: FormatText, FilePath: filePath, Overwrite: true}).Export(testLines[:1]); err != nil {
		t.Fatalf("Export with overwrite failed: %v", err)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}
	if string(content) != "4 Lightning Bolt\n" {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestExportBuilder(t *testing.T) {
	t.Run("writer", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewExportBuilder().WithFormat(FormatCSV).WithWriter(&buf).Export(testLines)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "name,deficit,score") {
			t.Errorf("unexpected output: %s", buf.String())
		}
	})

	t.Run("timestamped file", func(t *testing.T) {
		dir := t.TempDir()
		b := NewExportBuilder().WithFormat(FormatJSON).WithTimestampedFilename(dir, "wishlist_pauper")
		if err := b.Export(testLines); err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if filepath.Dir(b.FilePath()) != dir || !strings.HasSuffix(b.FilePath(), ".json") {
			t.Errorf("unexpected file path %s", b.FilePath())
		}
		if _, err := os.Stat(b.FilePath()); err != nil {
			t.Errorf("expected export file: %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		if err := NewExportBuilder().Export(testLines); err == nil {
			t.Error("expected error without destination")
		}
		var buf bytes.Buffer
		if err := NewExportBuilder().WithFormat("xml").WithWriter(&buf).Export(testLines); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}
