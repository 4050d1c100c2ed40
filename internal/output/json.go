package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/atiptools/atiplint/internal/lint"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	w      io.Writer
	indent bool
	now    func() time.Time // swappable in tests for stable output
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{w: w, indent: indent, now: time.Now}
}

// Format formats the batch report as JSON
func (f *JSONFormatter) Format(batch *lint.BatchReport) error {
	report := JSONReport{
		Header: JSONHeader{
			Tool:      "atiplint",
			Version:   "1.0.0",
			Timestamp: f.now().Format(time.RFC3339),
		},
		Summary: JSONSummary{
			TotalFiles:    len(batch.Files),
			TotalErrors:   batch.TotalErrors,
			TotalWarnings: batch.TotalWarnings,
			Canceled:      batch.Canceled,
		},
		Results: batch.Files,
	}
	for _, file := range batch.Files {
		if !file.Fatal && file.ErrorCount == 0 {
			report.Summary.SuccessfulFiles++
		} else {
			report.Summary.FailedFiles++
		}
	}

	var jsonBytes []byte
	var err error
	if f.indent {
		jsonBytes, err = json.MarshalIndent(report, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	_, err = fmt.Fprintln(f.w, string(jsonBytes))
	return err
}

// JSONReport represents the complete JSON report structure
type JSONReport struct {
	Header  JSONHeader         `json:"header"`
	Summary JSONSummary        `json:"summary"`
	Results []*lint.FileReport `json:"results"`
}

// JSONHeader contains report metadata
type JSONHeader struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// JSONSummary contains summary statistics
type JSONSummary struct {
	TotalFiles      int  `json:"total_files"`
	SuccessfulFiles int  `json:"successful_files"`
	FailedFiles     int  `json:"failed_files"`
	TotalErrors     int  `json:"total_errors"`
	TotalWarnings   int  `json:"total_warnings"`
	Canceled        bool `json:"canceled,omitempty"`
}
