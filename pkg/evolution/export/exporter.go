// Package export writes analysis result rows to JSON, CSV and Markdown
// files. Formatting lives here, never in the result value objects.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

// Row is one exportable record: a flat map of column name to value.
type Row = map[string]any

// Exporter writes files into one output directory, created on demand.
type Exporter struct {
	outputDir string
}

// New returns an exporter rooted at outputDir.
func New(outputDir string) (*Exporter, error) {
	if outputDir == "" {
		outputDir = "output"
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	return &Exporter{outputDir: outputDir}, nil
}

// JSON writes any value as indented JSON and returns the file path.
func (e *Exporter) JSON(data any, filename string) (string, error) {
	path := filepath.Join(e.outputDir, filename)
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	klog.V(2).InfoS("Exported JSON", "path", path)
	return path, nil
}

// CSV writes rows with a header of the sorted union of all keys.
func (e *Exporter) CSV(rows []Row, filename string) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("no rows to export to %s", filename)
	}

	header := columnUnion(rows)
	path := filepath.Join(e.outputDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for _, row := range rows {
		record := make([]string, len(header))
		for i, col := range header {
			record[i] = cellString(row[col])
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}
	klog.V(2).InfoS("Exported CSV", "path", path, "rows", len(rows))
	return path, nil
}

// Markdown writes rows as a Markdown table with an optional title.
func (e *Exporter) Markdown(rows []Row, filename, title string) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("no rows to export to %s", filename)
	}

	header := columnUnion(rows)
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(header))
		for i, col := range header {
			cells[i] = cellString(row[col])
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	path := filepath.Join(e.outputDir, filename)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	klog.V(2).InfoS("Exported Markdown", "path", path, "rows", len(rows))
	return path, nil
}

// columnUnion returns the sorted union of keys across all rows.
func columnUnion(rows []Row) []string {
	set := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			set[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(set))
	for k := range set {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Rows converts any slice of JSON-taggable structs to export rows via a
// JSON round trip, so exporters and result types stay decoupled.
func Rows(data any) ([]Row, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten rows: %w", err)
	}
	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to flatten rows: %w", err)
	}
	return rows, nil
}
