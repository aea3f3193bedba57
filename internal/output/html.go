package output

import (
	"fmt"
	"html/template"
	"io"

	"github.com/buemura/scamscan/pkg/types"
)

// HTMLFormatter renders outcomes as a self-contained HTML report with
// styled verdict and severity badges.
type HTMLFormatter struct{}

func (f *HTMLFormatter) Format(w io.Writer, outcomes []types.ScanOutcome) error {
	data := templateData{Outcomes: make([]htmlOutcome, len(outcomes))}
	for i, o := range outcomes {
		data.Outcomes[i] = htmlOutcome{ScanOutcome: o, Sorted: sortedFindings(o.Findings)}
	}
	return htmlTpl.Execute(w, data)
}

type htmlOutcome struct {
	types.ScanOutcome
	Sorted []types.Finding
}

type templateData struct {
	Outcomes []htmlOutcome
}

// severityClass maps a Severity to a CSS class name.
func severityClass(s types.Severity) string {
	switch s {
	case types.SeverityHigh:
		return "high"
	case types.SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

func verdictClass(v types.Verdict) string {
	switch v {
	case types.VerdictScam:
		return "high"
	case types.VerdictSuspicious:
		return "medium"
	default:
		return "safe"
	}
}

var funcMap = template.FuncMap{
	"severityClass": severityClass,
	"verdictClass":  verdictClass,
	"urlStatus":     urlStatus,
	"evidence":      evidence,
	"summary":       summary,
}

var htmlTpl = template.Must(template.New("report").Funcs(funcMap).Parse(fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>scamscan Report</title>
<style>%s</style>
</head>
<body>
<div class="container">
  <h1>scamscan Report</h1>

  {{range .Outcomes}}
  <section class="outcome">
    <h2><span class="badge {{verdictClass .Verdict}}">{{.Verdict}}</span> {{.Confidence}}%% confidence</h2>
    <blockquote>{{.Message}}</blockquote>

    {{if not .Sorted}}
      <p class="no-findings">No findings.</p>
    {{else}}
      <table>
        <thead>
          <tr><th>Severity</th><th>Type</th><th>Description</th><th>Evidence</th></tr>
        </thead>
        <tbody>
          {{range .Sorted}}
          <tr>
            <td><span class="badge {{severityClass .Severity}}">{{.Severity}}</span></td>
            <td>{{.Kind}}</td>
            <td>{{.Description}}</td>
            <td><code>{{evidence .}}</code></td>
          </tr>
          {{end}}
        </tbody>
      </table>
      <p class="total">{{summary .Findings}}</p>
    {{end}}

    {{if .URLVerdicts}}
      <h3>URL reputation</h3>
      <table>
        <thead>
          <tr><th>URL</th><th>Status</th><th>Sources</th></tr>
        </thead>
        <tbody>
          {{range .URLVerdicts}}
          <tr>
            <td><code>{{.URL}}</code></td>
            <td>{{urlStatus .}}</td>
            <td>
              <details>
                <summary>{{len .Sources}} sources</summary>
                {{range .Sources}}<p><strong>{{.Provider}}</strong> {{.Status}}{{if .Detail}}: {{.Detail}}{{end}}</p>{{end}}
              </details>
            </td>
          </tr>
          {{end}}
        </tbody>
      </table>
    {{end}}

    {{if .Narrative}}
      <h3>AI analysis</h3>
      <pre class="narrative">{{.Narrative}}</pre>
    {{end}}
  </section>
  {{end}}
</div>
</body>
</html>`, cssStyles)))

const cssStyles = `
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,Helvetica,Arial,sans-serif;
     line-height:1.6;color:#1a1a2e;background:#f5f5fa;padding:2rem}
.container{max-width:960px;margin:0 auto}
h1{margin-bottom:1rem;font-size:1.8rem}
h2{margin:1.5rem 0 .75rem;font-size:1.3rem;border-bottom:2px solid #e0e0e0;padding-bottom:.3rem}
h3{margin:1rem 0 .5rem;font-size:1.1rem}
blockquote{border-left:4px solid #c5cae9;padding:.5rem 1rem;margin-bottom:1rem;background:#fff;white-space:pre-wrap}
.total{font-weight:600}
.badge{display:inline-block;padding:2px 10px;border-radius:12px;font-size:.8rem;font-weight:700;color:#fff;text-transform:uppercase}
.badge.high{background:#e53935}
.badge.medium{background:#f9a825;color:#333}
.badge.low{background:#0288d1}
.badge.safe{background:#2e7d32}
table{width:100%;border-collapse:collapse;margin-bottom:1rem}
th,td{text-align:left;padding:.5rem .75rem;border-bottom:1px solid #e0e0e0}
th{background:#eaeaea;font-weight:600}
tr:hover{background:#f0f0ff}
details{margin-top:.4rem}
summary{cursor:pointer;color:#1565c0;font-size:.85rem}
.narrative{background:#fff;padding:1rem;border-radius:6px;white-space:pre-wrap}
.no-findings{color:#666;font-style:italic}
.outcome{margin-bottom:2rem}
`
