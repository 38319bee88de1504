package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/talentfetch/internal/batch"
)

// ReportEntry is one build in the written report.
type ReportEntry struct {
	Name   string `yaml:"name" json:"name"`
	URL    string `yaml:"url" json:"url"`
	Status string `yaml:"status" json:"status"`
	Talent string `yaml:"talent,omitempty" json:"talent,omitempty"`
	Error  string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Report is the document written after a run.
type Report struct {
	Summary batch.Summary `yaml:"summary" json:"summary"`
	Builds  []ReportEntry `yaml:"builds" json:"builds"`
}

// NewReport converts batch results into a report, keeping their order.
func NewReport(results []batch.Result) Report {
	rep := Report{Summary: batch.Summarize(results), Builds: make([]ReportEntry, 0, len(results))}
	for _, r := range results {
		e := ReportEntry{Name: r.Name, URL: r.URL, Status: r.Outcome.Status.String(), Talent: r.Outcome.Talent}
		if r.Outcome.Err != nil {
			e.Error = r.Outcome.Err.Error()
		}
		rep.Builds = append(rep.Builds, e)
	}
	return rep
}

// EncodeReport writes rep to w in the given format.
func EncodeReport(w io.Writer, format string, rep Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// WriteReportFile writes rep to path via a temporary file and rename so a
// failed run never leaves a half-written report behind.
func WriteReportFile(path, format string, rep Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := EncodeReport(tmp, format, rep); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("encode report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
