package invoices

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildReportTotals(t *testing.T) {
	rows := []View{
		{Invoice: Invoice{InvoiceNumber: "A", Amount: 1200000.50, Currency: "USD"}, Derivation: Derivation{DisplayStatus: StatusOverdue, OverdueDays: 9}},
		{Invoice: Invoice{InvoiceNumber: "B", Amount: 99.50, Currency: "USD"}, Derivation: Derivation{DisplayStatus: StatusPosted}},
	}
	counts := StatusCounts{Posted: 1, Overdue: 1, Total: 2}

	data := BuildReport(rows, counts, time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC))
	require.Equal(t, "1,200,100.00", data.TotalAmount)
	require.Equal(t, "USD", data.Currency)
	require.Equal(t, "2025-01-10 09:30", data.GeneratedAt)
}

func TestRenderReportHTML(t *testing.T) {
	rows := []View{
		{
			Invoice:    Invoice{InvoiceNumber: "INV-1", Amount: 500, Currency: "USD", DueDate: "2025-01-01", PaymentTerms: TermsFromLabel("Due on receipt")},
			Derivation: Derivation{DisplayStatus: StatusOverdue, OverdueDays: 9, AgeDays: 12},
		},
		{
			Invoice:    Invoice{InvoiceNumber: "INV-2", Amount: 250, Currency: "USD"},
			Derivation: Derivation{DisplayStatus: StatusPaid},
		},
	}
	data := BuildReport(rows, StatusCounts{Overdue: 1, Paid: 1, Total: 1}, time.Now())

	var buf bytes.Buffer
	require.NoError(t, RenderReportHTML(&buf, data))
	html := buf.String()

	require.Contains(t, html, "INV-1")
	require.Contains(t, html, `class="pill overdue"`)
	require.Contains(t, html, `class="pill paid"`)
	require.Contains(t, html, "Due on receipt")
	require.True(t, strings.Index(html, "INV-1") < strings.Index(html, "INV-2"), "row order preserved")
}

func TestPillClass(t *testing.T) {
	require.Equal(t, "paid", pillClass("Paid"))
	require.Equal(t, "overdue", pillClass("Overdue"))
	require.Equal(t, "posted", pillClass("Submitted"))
	require.Equal(t, "posted", pillClass(""))
}
