package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fenilsonani/dupescan/internal/dedup"
	"github.com/fenilsonani/dupescan/pkg/utils"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// Reporter handles report generation over a grouping result
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Report generates a report from a grouping result
func (r *Reporter) Report(result *dedup.Result) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(result)
	case FormatJSON:
		return r.reportJSON(result)
	case FormatYAML:
		return r.reportYAML(result)
	case FormatSummary:
		return r.reportSummary(result)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// reportTable lists every duplicate against the file it matched
func (r *Reporter) reportTable(result *dedup.Result) error {
	if len(result.Groups) == 0 {
		fmt.Fprintln(r.writer, "No duplicates found.")
		r.reportFailures(result)
		return nil
	}

	width := 0
	for _, group := range result.Groups {
		for _, file := range group.Files[1:] {
			if n := len(filepath.Clean(file.Path)); n > width {
				width = n
			}
		}
	}
	if width < len("Duplicate File") {
		width = len("Duplicate File")
	}

	fmt.Fprintf(r.writer, "%-*s  %s\n", width, "Duplicate File", "Matched To")
	fmt.Fprintf(r.writer, "%s  %s\n", strings.Repeat("-", width), strings.Repeat("-", len("Matched To")))

	for _, group := range result.Groups {
		kept := filepath.Clean(group.Files[0].Path)
		for _, file := range group.Files[1:] {
			fmt.Fprintf(r.writer, "%-*s  %s\n", width, filepath.Clean(file.Path), kept)
		}
	}

	fmt.Fprintf(r.writer, "\nTotal: %d duplicates in %d groups, %s reclaimable\n",
		result.DuplicateCount(), len(result.Groups), utils.FormatBytes(result.WastedSize))

	r.reportFailures(result)
	return nil
}

// reportSummary prints per-group counts without per-file rows
func (r *Reporter) reportSummary(result *dedup.Result) error {
	fmt.Fprintf(r.writer, "=== Duplicate Scan Summary ===\n")
	fmt.Fprintf(r.writer, "Files scanned: %d\n", result.FilesScanned)
	fmt.Fprintf(r.writer, "Candidates after size bucketing: %d\n", result.CandidateFiles)
	fmt.Fprintf(r.writer, "Duplicate groups: %d\n", len(result.Groups))
	fmt.Fprintf(r.writer, "Redundant copies: %d\n", result.DuplicateCount())
	fmt.Fprintf(r.writer, "Reclaimable: %s\n", utils.FormatBytes(result.WastedSize))

	for i, group := range result.Groups {
		fmt.Fprintf(r.writer, "  group %d: %d files x %s (kept: %s)\n",
			i+1, len(group.Files), utils.FormatBytes(group.Size), filepath.Clean(group.Files[0].Path))
	}

	r.reportFailures(result)
	return nil
}

// reportJSON generates a JSON report
func (r *Reporter) reportJSON(result *dedup.Result) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildReport(result))
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(result *dedup.Result) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(buildReport(result))
}

// reportFailures appends the unprocessable-file section, if any
func (r *Reporter) reportFailures(result *dedup.Result) {
	if len(result.Failures) == 0 {
		return
	}

	fmt.Fprintf(r.writer, "\n%d files could not be processed:\n", len(result.Failures))
	for _, failure := range result.Failures {
		fmt.Fprintf(r.writer, "  %s (%s stage): %s\n", failure.Path, failure.Stage, failure.Reason())
	}
}

// report is the serializable shape shared by the JSON and YAML formats
type report struct {
	Timestamp       string                 `json:"timestamp" yaml:"timestamp"`
	FilesScanned    int                    `json:"files_scanned" yaml:"files_scanned"`
	Groups          []dedup.DuplicateGroup `json:"groups" yaml:"groups"`
	DuplicateCount  int                    `json:"duplicate_count" yaml:"duplicate_count"`
	WastedSize      int64                  `json:"wasted_size" yaml:"wasted_size"`
	WastedFormatted string                 `json:"wasted_size_formatted" yaml:"wasted_size_formatted"`
	Failures        []failureReport        `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type failureReport struct {
	Path   string `json:"path" yaml:"path"`
	Stage  string `json:"stage" yaml:"stage"`
	Reason string `json:"reason" yaml:"reason"`
}

func buildReport(result *dedup.Result) report {
	rep := report{
		Timestamp:       time.Now().Format(time.RFC3339),
		FilesScanned:    result.FilesScanned,
		Groups:          result.Groups,
		DuplicateCount:  result.DuplicateCount(),
		WastedSize:      result.WastedSize,
		WastedFormatted: utils.FormatBytes(result.WastedSize),
	}
	for _, failure := range result.Failures {
		rep.Failures = append(rep.Failures, failureReport{
			Path:   failure.Path,
			Stage:  string(failure.Stage),
			Reason: failure.Reason(),
		})
	}
	return rep
}

// WriteList writes one "duplicate<TAB>kept" line per redundant copy, the
// machine-readable companion to the table format.
func WriteList(w io.Writer, result *dedup.Result) error {
	for _, group := range result.Groups {
		kept := filepath.Clean(group.Files[0].Path)
		for _, file := range group.Files[1:] {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", filepath.Clean(file.Path), kept); err != nil {
				return err
			}
		}
	}
	return nil
}
