package invoices

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborlight/harborlight-ops/internal/dates"
)

func day(t *testing.T, s string) dates.CalendarDate {
	t.Helper()
	d := dates.Parse(s)
	require.NotNil(t, d)
	return *d
}

func TestDerivePaidAlwaysWins(t *testing.T) {
	inv := Invoice{Status: "Paid", DueDate: "2020-01-01"}
	got := Derive(inv, day(t, "2025-01-01"))
	require.Equal(t, StatusPaid, got.DisplayStatus)
	require.Equal(t, 0, got.OverdueDays)
	require.Equal(t, 0, got.AgeDays)
}

func TestDerivePaidCaseInsensitive(t *testing.T) {
	inv := Invoice{Status: " PAID ", DueDate: "2020-01-01"}
	got := Derive(inv, day(t, "2025-01-01"))
	require.Equal(t, StatusPaid, got.DisplayStatus)
}

func TestDeriveOverdueOnReceiptTerms(t *testing.T) {
	inv := Invoice{DueDate: "2025-01-01", PaymentTerms: TermsFromLabel("Due on receipt")}
	got := Derive(inv, day(t, "2025-01-10"))
	require.Equal(t, 9, got.OverdueDays)
	require.Equal(t, StatusOverdue, got.DisplayStatus)
	require.NotNil(t, got.EffectiveDueDate)
	require.Equal(t, "2025-01-01", got.EffectiveDueDate.String())
}

func TestDeriveWithinNetThirtyGrace(t *testing.T) {
	inv := Invoice{DueDate: "2025-01-01", PaymentTerms: TermsFromLabel("30 Days Net")}
	got := Derive(inv, day(t, "2025-01-10"))
	require.Equal(t, 0, got.OverdueDays)
	require.Equal(t, StatusPosted, got.DisplayStatus)
	require.NotNil(t, got.EffectiveDueDate)
	require.Equal(t, "2025-01-31", got.EffectiveDueDate.String())
}

func TestDeriveStoredStatusPassesThrough(t *testing.T) {
	inv := Invoice{Status: "Submitted", DueDate: "2025-01-01", PaymentTerms: TermsFromLabel("30 Days Net")}
	got := Derive(inv, day(t, "2025-01-10"))
	require.Equal(t, "Submitted", got.DisplayStatus)
}

func TestDeriveMissingReferenceDateNeverOverdue(t *testing.T) {
	got := Derive(Invoice{}, day(t, "2099-12-31"))
	require.Equal(t, 0, got.OverdueDays)
	require.Equal(t, StatusPosted, got.DisplayStatus)
	require.Nil(t, got.EffectiveDueDate)
}

func TestDeriveMalformedDateDegradesSafely(t *testing.T) {
	inv := Invoice{Status: "Processing", DueDate: "not-a-date"}
	got := Derive(inv, day(t, "2025-06-01"))
	require.Equal(t, 0, got.OverdueDays)
	require.Equal(t, "Processing", got.DisplayStatus)
	require.Nil(t, got.EffectiveDueDate)
}

func TestDeriveFallsBackToDeliveryDate(t *testing.T) {
	inv := Invoice{DeliveryDate: "2025-01-01", PaymentTerms: TermsFromLabel("Due on receipt")}
	got := Derive(inv, day(t, "2025-01-05"))
	require.Equal(t, 4, got.OverdueDays)
	require.Equal(t, StatusOverdue, got.DisplayStatus)
}

func TestDeriveDueDatePrecedesDeliveryDate(t *testing.T) {
	inv := Invoice{
		DueDate:      "2025-02-01",
		DeliveryDate: "2025-01-01",
		PaymentTerms: TermsFromLabel("Due on receipt"),
	}
	got := Derive(inv, day(t, "2025-02-03"))
	require.Equal(t, 2, got.OverdueDays)
}

func TestDeriveNotYetDueClampsToZero(t *testing.T) {
	inv := Invoice{DueDate: "2025-06-01", PaymentTerms: TermsFromLabel("Due on receipt")}
	got := Derive(inv, day(t, "2025-05-01"))
	require.Equal(t, 0, got.OverdueDays)
	require.Equal(t, StatusPosted, got.DisplayStatus)
}

func TestAgeDaysUsesDeliveryThenOrderDate(t *testing.T) {
	today := day(t, "2025-01-20")

	inv := Invoice{DeliveryDate: "2025-01-10"}
	require.Equal(t, 10, Derive(inv, today).AgeDays)

	inv = Invoice{OrderDate: "2025-01-15"}
	require.Equal(t, 5, Derive(inv, today).AgeDays)

	require.Equal(t, 0, Derive(Invoice{}, today).AgeDays)
}

func TestAgeDaysIndependentOfTerms(t *testing.T) {
	// 30 Days Net keeps the invoice out of Overdue while it still ages.
	inv := Invoice{DeliveryDate: "2025-01-01", PaymentTerms: TermsFromLabel("30 Days Net")}
	got := Derive(inv, day(t, "2025-01-10"))
	require.Equal(t, 9, got.AgeDays)
	require.Equal(t, 0, got.OverdueDays)
}

func TestEffectiveDueDate(t *testing.T) {
	due := EffectiveDueDate("2025-01-01", TermsFromLabel("30 Days Net"))
	require.NotNil(t, due)
	require.Equal(t, "2025-01-31", due.String())

	require.Nil(t, EffectiveDueDate("", TermsFromLabel("30 Days Net")))
	require.Nil(t, EffectiveDueDate("bogus", PaymentTerms{}))
}

func TestSortForReportStable(t *testing.T) {
	today := day(t, "2025-01-10")
	records := []Invoice{
		{InvoiceNumber: "A", DueDate: "2025-01-08", PaymentTerms: TermsFromLabel("30 Days Net")},
		{InvoiceNumber: "B", DueDate: "2025-01-01", PaymentTerms: TermsFromLabel("Due on receipt")},
		{InvoiceNumber: "C", DueDate: "2025-01-09", PaymentTerms: TermsFromLabel("30 Days Net")},
	}

	sorted := SortForReport(records, today)
	require.Len(t, sorted, 3)
	require.Equal(t, "B", sorted[0].InvoiceNumber)
	// ties (zero overdue) keep original relative order
	require.Equal(t, "A", sorted[1].InvoiceNumber)
	require.Equal(t, "C", sorted[2].InvoiceNumber)

	// input untouched
	require.Equal(t, "A", records[0].InvoiceNumber)
}

func TestCountStatuses(t *testing.T) {
	today := day(t, "2025-01-10")
	records := []Invoice{
		{InvoiceNumber: "P1", Status: "Paid", DueDate: "2020-01-01"},
		{InvoiceNumber: "O1", DueDate: "2025-01-01", PaymentTerms: TermsFromLabel("Due on receipt")},
		{InvoiceNumber: "N1", DueDate: "2025-01-01", PaymentTerms: TermsFromLabel("30 Days Net")},
		// no dates at all: still a Posted row, still part of the total
		{InvoiceNumber: "N2"},
	}

	counts := CountStatuses(records, today)
	require.Equal(t, 1, counts.Paid)
	require.Equal(t, 1, counts.Overdue)
	require.Equal(t, 2, counts.Posted)
	require.Equal(t, 3, counts.Total)
}
