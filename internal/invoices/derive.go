package invoices

import (
	"sort"
	"strings"

	"github.com/harborlight/harborlight-ops/internal/dates"
)

// Derivation is the authoritative derived view of an invoice. Never
// persisted; recomputed from the stored record and a caller-supplied
// "today" on every read.
type Derivation struct {
	DisplayStatus    string              `json:"display_status"`
	OverdueDays      int                 `json:"overdue_days"`
	AgeDays          int                 `json:"age_days"`
	EffectiveDueDate *dates.CalendarDate `json:"effective_due_date,omitempty"`
}

// EffectiveDueDate computes the contractual due date: the reference date
// pushed out by the resolved terms days. Returns nil when the reference
// date is missing or unparseable.
func EffectiveDueDate(referenceDate string, terms PaymentTerms) *dates.CalendarDate {
	base := dates.Parse(referenceDate)
	if base == nil {
		return nil
	}
	due := dates.AddDays(*base, terms.TermsDays())
	return &due
}

// referenceDate picks the overdue baseline: due date first, delivery date
// as fallback.
func (inv Invoice) referenceDate() string {
	if inv.DueDate != "" {
		return inv.DueDate
	}
	return inv.DeliveryDate
}

// Derive computes the display status and overdue day count for one invoice
// as of today. Precedence: a paid stored status always wins; otherwise an
// exceeded effective due date marks the invoice Overdue; otherwise the raw
// stored status (defaulting to Posted) passes through. Malformed or missing
// dates degrade to "not overdue"; this function is total.
func Derive(inv Invoice, today dates.CalendarDate) Derivation {
	d := Derivation{AgeDays: ageDays(inv, today)}

	if strings.EqualFold(strings.TrimSpace(inv.Status), StatusPaid) {
		d.DisplayStatus = StatusPaid
		return d
	}

	d.EffectiveDueDate = EffectiveDueDate(inv.referenceDate(), inv.PaymentTerms)
	if d.EffectiveDueDate == nil {
		d.DisplayStatus = storedOrPosted(inv.Status)
		return d
	}

	if overdue := dates.DaysBetween(today, *d.EffectiveDueDate); overdue > 0 {
		d.OverdueDays = overdue
		d.DisplayStatus = StatusOverdue
		return d
	}
	d.DisplayStatus = storedOrPosted(inv.Status)
	return d
}

// ageDays measures how long an unpaid invoice has been sitting since its
// delivery (or order) date. Distinct from overdue days: age ignores payment
// terms. Paid invoices age zero.
func ageDays(inv Invoice, today dates.CalendarDate) int {
	if strings.EqualFold(strings.TrimSpace(inv.Status), StatusPaid) {
		return 0
	}
	baseStr := inv.DeliveryDate
	if baseStr == "" {
		baseStr = inv.OrderDate
	}
	base := dates.Parse(baseStr)
	if base == nil {
		return 0
	}
	if age := dates.DaysBetween(today, *base); age > 0 {
		return age
	}
	return 0
}

func storedOrPosted(status string) string {
	if status == "" {
		return StatusPosted
	}
	return status
}

// SortForReport orders invoices for the printable report: most overdue
// first, ties keeping their original relative order. Reuses Derive so the
// report can never disagree with the on-screen badges.
func SortForReport(records []Invoice, today dates.CalendarDate) []Invoice {
	type keyed struct {
		inv     Invoice
		overdue int
	}
	items := make([]keyed, len(records))
	for i, inv := range records {
		items[i] = keyed{inv: inv, overdue: Derive(inv, today).OverdueDays}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].overdue > items[j].overdue })
	out := make([]Invoice, len(items))
	for i, item := range items {
		out[i] = item.inv
	}
	return out
}

// StatusCounts summarises the invoice set for the dashboard donuts. Paid
// invoices are excluded from the total, matching the dashboard's historical
// behaviour of charting only open money.
type StatusCounts struct {
	Posted  int `json:"posted_count"`
	Overdue int `json:"overdue_count"`
	Paid    int `json:"paid_count"`
	Total   int `json:"total_count"`
}

// CountStatuses tallies display statuses across records, deriving each one
// against the same today.
func CountStatuses(records []Invoice, today dates.CalendarDate) StatusCounts {
	var c StatusCounts
	for _, inv := range records {
		switch Derive(inv, today).DisplayStatus {
		case StatusPaid:
			c.Paid++
		case StatusOverdue:
			c.Overdue++
		default:
			c.Posted++
		}
	}
	c.Total = c.Posted + c.Overdue
	return c
}
