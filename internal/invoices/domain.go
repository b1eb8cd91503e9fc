package invoices

import (
	"encoding/json"
	"time"
)

// Display statuses produced by the derivation engine. Stored statuses are
// free text ("Draft", "Submitted", "Processing", ...); only these three are
// synthesised.
const (
	StatusPaid    = "Paid"
	StatusOverdue = "Overdue"
	StatusPosted  = "Posted"
)

// DefaultTermsDays applies when payment terms are missing or unrecognised.
const DefaultTermsDays = 30

// Invoice is a vendor invoice as stored. Date fields hold canonical
// YYYY-MM-DD strings or empty; the engine treats every field as read-only
// input and tolerates malformed values.
type Invoice struct {
	ID            int64        `json:"id"`
	InvoiceNumber string       `json:"invoice_number"`
	VendorID      int64        `json:"vendor_id"`
	Amount        float64      `json:"amount"`
	Currency      string       `json:"currency"`
	Status        string       `json:"status"`
	DueDate       string       `json:"due_date,omitempty"`
	DeliveryDate  string       `json:"delivery_date,omitempty"`
	OrderDate     string       `json:"order_date,omitempty"`
	PostDate      string       `json:"post_date,omitempty"`
	PaymentTerms  PaymentTerms `json:"payment_terms"`
	PONumber      string       `json:"po_number,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	CreatedAt     time.Time    `json:"created_at,omitzero"`
}

// PaymentTerms carries the payment-terms value in any of its historical
// shapes: a label string ("30 Days Net"), a plain integer day count, or a
// structured object with termsDays and/or name.
type PaymentTerms struct {
	Days  *int
	Label string
}

type structuredTerms struct {
	TermsDays *int   `json:"termsDays"`
	Name      string `json:"name"`
}

// UnmarshalJSON accepts a string, a number, an object, or null.
func (t *PaymentTerms) UnmarshalJSON(data []byte) error {
	*t = PaymentTerms{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &t.Label)
	case '{':
		var obj structuredTerms
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		t.Days = obj.TermsDays
		t.Label = obj.Name
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			// Unrecognised shapes degrade to the default, never error.
			return nil
		}
		days := int(n)
		t.Days = &days
		return nil
	}
}

// MarshalJSON re-emits the value in the shape it arrived in.
func (t PaymentTerms) MarshalJSON() ([]byte, error) {
	if t.Days != nil {
		return json.Marshal(*t.Days)
	}
	if t.Label != "" {
		return json.Marshal(t.Label)
	}
	return []byte("null"), nil
}

// IsZero reports whether no terms were supplied.
func (t PaymentTerms) IsZero() bool {
	return t.Days == nil && t.Label == ""
}

// TermsFromLabel builds terms from a stored label string.
func TermsFromLabel(label string) PaymentTerms {
	return PaymentTerms{Label: label}
}

// TermsFromDays builds terms from an explicit day count.
func TermsFromDays(days int) PaymentTerms {
	return PaymentTerms{Days: &days}
}
