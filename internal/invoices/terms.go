package invoices

import (
	"regexp"
	"strings"
)

var termsDaysPattern = regexp.MustCompile(`(?i)(\d+)\s*days`)

// TermsDays resolves payment terms to a grace-day count. Two historical
// label sets ("30 Days Net" / "Due on receipt" plus free-form "<N> days"
// strings) funnel through this one rule so every call site agrees.
//
//	zero value            -> 30
//	explicit day count    -> that count
//	label with "receipt"  -> 0
//	label "<N> days"      -> N
//	anything else         -> 30
func (t PaymentTerms) TermsDays() int {
	if t.Days != nil {
		return *t.Days
	}
	return labelToDays(t.Label)
}

func labelToDays(label string) int {
	if label == "" {
		return DefaultTermsDays
	}
	if strings.Contains(strings.ToLower(label), "receipt") {
		return 0
	}
	if m := termsDaysPattern.FindStringSubmatch(label); m != nil {
		days := 0
		for _, c := range m[1] {
			days = days*10 + int(c-'0')
		}
		return days
	}
	return DefaultTermsDays
}
