package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/buemura/scamscan/pkg/types"
	"github.com/phpdave11/gofpdf"
)

// PDFFormatter renders outcomes as an A4 PDF report using the core
// Helvetica font, so text outside printable ASCII is replaced.
type PDFFormatter struct{}

func (f *PDFFormatter) Format(w io.Writer, outcomes []types.ScanOutcome) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetTitle("scamscan Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "scamscan Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated at: %s", time.Now().UTC().Format(time.RFC3339)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, o := range outcomes {
		r, g, b := verdictRGB(o.Verdict)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(0, 7, fmt.Sprintf("%s - %d%% confidence", strings.ToUpper(string(o.Verdict)), o.Confidence), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(40, 40, 40)
		if o.ID != "" {
			pdf.MultiCell(0, 4.5, "id: "+pdfText(o.ID), "", "L", false)
		}
		pdf.MultiCell(0, 4.5, "message: "+pdfText(o.Message), "", "L", false)
		pdf.Ln(1)

		if len(o.Findings) == 0 {
			pdf.SetTextColor(90, 90, 90)
			pdf.MultiCell(0, 5, "(no findings)", "", "L", false)
		}
		for _, finding := range sortedFindings(o.Findings) {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetTextColor(20, 20, 20)
			pdf.MultiCell(0, 4.5, fmt.Sprintf("[%s] %s | %s", finding.Severity, finding.Kind, pdfText(finding.Description)), "", "L", false)
			if ev := evidence(finding); ev != "" {
				pdf.SetFont("Helvetica", "", 9)
				pdf.SetTextColor(40, 40, 40)
				pdf.MultiCell(0, 4.5, "matched: "+pdfText(ev), "", "L", false)
			}
		}

		for _, v := range o.URLVerdicts {
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(40, 40, 40)
			pdf.MultiCell(0, 4.5, fmt.Sprintf("url: %s | %s | %s", pdfText(v.URL), urlStatus(v), sourceList(v)), "", "L", false)
		}

		if o.Narrative != "" {
			pdf.Ln(1)
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 6, "AI analysis", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			for _, line := range strings.Split(o.Narrative, "\n") {
				if strings.TrimSpace(line) == "" {
					continue
				}
				pdf.MultiCell(0, 4.5, pdfText(line), "", "L", false)
			}
		}
		pdf.Ln(3)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func verdictRGB(v types.Verdict) (int, int, int) {
	switch v {
	case types.VerdictScam:
		return 200, 30, 30
	case types.VerdictSuspicious:
		return 190, 120, 0
	default:
		return 30, 120, 50
	}
}

// pdfText flattens whitespace and replaces anything outside printable ASCII,
// which the core fonts cannot encode.
func pdfText(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(s)
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 32 && r <= 126 {
			b.WriteRune(r)
		} else {
			b.WriteRune('?')
		}
	}
	return b.String()
}
