package invoices

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTermsDaysFromLabels(t *testing.T) {
	cases := map[string]int{
		"30 Days Net":       30,
		"Due on receipt":    0,
		"due on RECEIPT":    0,
		"Net 45 days":       45,
		"pay within 7 Days": 7,
		"60 DAYS":           60,
		"whenever":          30,
		"":                  30,
	}
	for label, want := range cases {
		require.Equal(t, want, TermsFromLabel(label).TermsDays(), "label %q", label)
	}
}

func TestTermsDaysExplicit(t *testing.T) {
	require.Equal(t, 10, TermsFromDays(10).TermsDays())
	require.Equal(t, 0, TermsFromDays(0).TermsDays())
}

func TestTermsDaysZeroValueDefaults(t *testing.T) {
	var terms PaymentTerms
	require.True(t, terms.IsZero())
	require.Equal(t, 30, terms.TermsDays())
}

func TestPaymentTermsUnmarshalShapes(t *testing.T) {
	var terms PaymentTerms

	require.NoError(t, json.Unmarshal([]byte(`"30 Days Net"`), &terms))
	require.Equal(t, 30, terms.TermsDays())

	require.NoError(t, json.Unmarshal([]byte(`15`), &terms))
	require.Equal(t, 15, terms.TermsDays())

	require.NoError(t, json.Unmarshal([]byte(`{"termsDays": 10}`), &terms))
	require.Equal(t, 10, terms.TermsDays())

	require.NoError(t, json.Unmarshal([]byte(`{"name": "Due on receipt"}`), &terms))
	require.Equal(t, 0, terms.TermsDays())

	require.NoError(t, json.Unmarshal([]byte(`{"name": "Net 45 days"}`), &terms))
	require.Equal(t, 45, terms.TermsDays())

	require.NoError(t, json.Unmarshal([]byte(`null`), &terms))
	require.Equal(t, 30, terms.TermsDays())

	require.NoError(t, json.Unmarshal([]byte(`true`), &terms))
	require.Equal(t, 30, terms.TermsDays())
}

func TestPaymentTermsMarshalRoundTrip(t *testing.T) {
	out, err := json.Marshal(TermsFromLabel("30 Days Net"))
	require.NoError(t, err)
	require.JSONEq(t, `"30 Days Net"`, string(out))

	out, err = json.Marshal(TermsFromDays(15))
	require.NoError(t, err)
	require.JSONEq(t, `15`, string(out))

	out, err = json.Marshal(PaymentTerms{})
	require.NoError(t, err)
	require.Equal(t, "null", string(out))
}
