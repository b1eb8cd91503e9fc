package invoices

import (
	"html/template"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ReportData feeds the printable invoice report. Rows arrive pre-sorted by
// SortForReport so the document and the on-screen badges always agree.
type ReportData struct {
	GeneratedAt string
	Rows        []View
	Counts      StatusCounts
	TotalAmount string
	Currency    string
}

var amountPrinter = message.NewPrinter(language.English)

// BuildReport assembles the report payload from derived rows.
func BuildReport(rows []View, counts StatusCounts, generatedAt time.Time) ReportData {
	var total float64
	currency := ""
	for _, row := range rows {
		total += row.Amount
		if currency == "" {
			currency = row.Currency
		}
	}
	return ReportData{
		GeneratedAt: generatedAt.Format("2006-01-02 15:04"),
		Rows:        rows,
		Counts:      counts,
		TotalAmount: amountPrinter.Sprintf("%.2f", total),
		Currency:    currency,
	}
}

var reportTemplate = template.Must(template.New("invoice_report").Funcs(template.FuncMap{
	"pillClass": pillClass,
	"orDash": func(s string) string {
		if s == "" {
			return "—"
		}
		return s
	},
	"amount": func(v float64) string { return amountPrinter.Sprintf("%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice Report</title>
<style>
  body{font-family:ui-sans-serif,system-ui,sans-serif;margin:32px;color:#18181b}
  h1{font-size:20px;margin-bottom:2px}
  .meta{color:#71717a;font-size:12px;margin-bottom:16px}
  table{width:100%;border-collapse:collapse;font-size:13px}
  th,td{text-align:left;padding:6px 8px;border-bottom:1px solid #e4e4e7}
  th{color:#52525b;font-weight:600}
  td.num{text-align:right;font-variant-numeric:tabular-nums}
  .pill{display:inline-block;border-radius:9999px;border:1px solid;padding:2px 10px;font-size:11px}
  .paid{background:#d1fae5;color:#047857;border-color:#6ee7b7}
  .overdue{background:#ffe4e6;color:#be123c;border-color:#fda4af}
  .posted{background:#fef3c7;color:#b45309;border-color:#fcd34d}
  tfoot td{font-weight:600;border-top:2px solid #a1a1aa}
</style>
</head>
<body>
<h1>Invoice Report</h1>
<div class="meta">Generated {{.GeneratedAt}} · {{.Counts.Overdue}} overdue · {{.Counts.Posted}} open · {{.Counts.Paid}} paid</div>
<table>
<thead>
<tr><th>Invoice #</th><th>Status</th><th>Due Date</th><th>Overdue Days</th><th>Age Days</th><th>Terms</th><th style="text-align:right">Amount</th></tr>
</thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.InvoiceNumber}}</td>
<td><span class="pill {{pillClass .DisplayStatus}}">{{.DisplayStatus}}</span></td>
<td>{{orDash .DueDate}}</td>
<td class="num">{{.OverdueDays}}</td>
<td class="num">{{.AgeDays}}</td>
<td>{{orDash .PaymentTerms.Label}}</td>
<td class="num">{{amount .Amount}}</td>
</tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="6">Total ({{.Currency}})</td><td class="num">{{.TotalAmount}}</td></tr>
</tfoot>
</table>
</body>
</html>
`))

// RenderReportHTML writes the printable report document.
func RenderReportHTML(w io.Writer, data ReportData) error {
	return reportTemplate.Execute(w, data)
}

func pillClass(status string) string {
	switch strings.ToLower(status) {
	case "paid":
		return "paid"
	case "overdue":
		return "overdue"
	default:
		return "posted"
	}
}
