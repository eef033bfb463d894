package benchmark

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mwiater/kernbench/internal/report"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9_]+`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// writeFileFn is swapped in tests.
var writeFileFn = os.WriteFile

// Export writes the structured report to jsonPath and, when mdPath is not
// empty, the Markdown rendering to mdPath. Parent directories are created.
func Export(r *report.Report, jsonPath, mdPath string) error {
	out, err := report.Serialize(r)
	if err != nil {
		return err
	}
	if jsonPath != "" {
		if err := writeExport(jsonPath, out.Structured); err != nil {
			return err
		}
		log.Printf("Report written to %s", jsonPath)
	}
	if mdPath != "" {
		if err := writeExport(mdPath, []byte(report.Markdown(r))); err != nil {
			return err
		}
		log.Printf("Markdown report written to %s", mdPath)
	}
	return nil
}

func writeExport(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating report directory: %w", err)
		}
	}
	if err := writeFileFn(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing report %s: %w", path, err)
	}
	return nil
}

// DefaultExportPath names a report file after its host and timestamp.
func DefaultExportPath(dir string, r *report.Report) string {
	host := Slugify(r.Host.Hostname)
	if host == "" {
		host = "host"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.json", host, r.GeneratedAt.UTC().Format("20060102-150405")))
}

// Slugify converts a string into a "slug" format,
// including replacing colons (:) with underscores (_).
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ":", "_")
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-_")
}
