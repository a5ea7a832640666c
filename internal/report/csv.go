package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leadlens/leadlens/internal/model"
)

// CSVWriter outputs a run's lead list in CSV format for spreadsheet import.
// One row per lead; run-level fields (errors, synthesis) are not part of
// the tabular contract and are omitted.
//
// Design decision: The spreadsheet export contract is served as CSV rather
// than a binary workbook format. Every spreadsheet tool imports CSV, and
// it keeps the export dependency-free and diffable.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// csvHeader is the fixed column order of the lead export.
var csvHeader = []string{
	"rank",
	"name",
	"address",
	"phone",
	"website",
	"rating",
	"reviews_count",
	"score",
	"icp_fit",
	"pain",
	"reachability",
	"compliance_risk",
	"evidence_confidence",
	"reason_codes",
	"suggested_packages",
}

// Write outputs the run's leads as CSV rows under a fixed header.
func (w *CSVWriter) Write(result *model.RunResult) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	if err := cw.Write(csvHeader); err != nil {
		return counter.n, err
	}
	for i, lead := range result.Leads {
		row := []string{
			strconv.Itoa(i + 1),
			lead.Candidate.Name,
			lead.Candidate.Address,
			lead.Candidate.Phone,
			lead.Candidate.Website,
			formatFloat(lead.Candidate.Rating),
			strconv.Itoa(lead.Candidate.ReviewsCount),
			formatFloat(lead.Score),
			formatFloat(lead.Subscores.ICPFit),
			formatFloat(lead.Subscores.Pain),
			formatFloat(lead.Subscores.Reachability),
			formatFloat(lead.Subscores.ComplianceRisk),
			evidenceConfidence(lead),
			strings.Join(lead.ReasonCodes, ";"),
			packageCodes(lead),
		}
		if err := cw.Write(row); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// evidenceConfidence renders the audit confidence, empty when unaudited.
func evidenceConfidence(lead model.Lead) string {
	if lead.Audit == nil {
		return ""
	}
	return formatFloat(lead.Audit.ConfidenceScore)
}

// packageCodes renders suggestion codes joined by semicolons.
func packageCodes(lead model.Lead) string {
	parts := make([]string, 0, len(lead.Suggestions))
	for _, s := range lead.Suggestions {
		parts = append(parts, string(s.Code))
	}
	return strings.Join(parts, ";")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// countingWriter tracks bytes written through it so CSVWriter can honor
// the Writer interface's byte count.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	if err != nil {
		return n, fmt.Errorf("csv write: %w", err)
	}
	return n, nil
}
