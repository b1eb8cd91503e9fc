package invoices

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsDuplicateNumber(t *testing.T) {
	existing := []Invoice{
		{ID: 1, InvoiceNumber: "INV-1"},
		{ID: 2, InvoiceNumber: "INV-2"},
	}

	require.True(t, IsDuplicateNumber("INV-1", existing, 2))
	require.False(t, IsDuplicateNumber("INV-1", existing, 1), "editing a record must not flag itself")
	require.True(t, IsDuplicateNumber("  INV-2  ", existing, 0), "candidate is trimmed")
	require.False(t, IsDuplicateNumber("inv-1", existing, 0), "match is case-sensitive")
	require.False(t, IsDuplicateNumber("", existing, 0))
	require.False(t, IsDuplicateNumber("   ", existing, 0))
	require.False(t, IsDuplicateNumber("INV-9", nil, 0))
}

func waitForVerdict(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no verdict delivered")
		return false
	}
}

func TestDuplicateCheckerFindsCollision(t *testing.T) {
	lookup := func(ctx context.Context, number string) ([]Invoice, error) {
		return []Invoice{{ID: 7, InvoiceNumber: number}}, nil
	}
	checker := NewDuplicateChecker(lookup, 5*time.Millisecond)

	verdicts := make(chan bool, 1)
	checker.Check(context.Background(), "INV-7", 0, func(v bool) { verdicts <- v })
	require.True(t, waitForVerdict(t, verdicts))
}

func TestDuplicateCheckerExcludesEditedRecord(t *testing.T) {
	lookup := func(ctx context.Context, number string) ([]Invoice, error) {
		return []Invoice{{ID: 7, InvoiceNumber: number}}, nil
	}
	checker := NewDuplicateChecker(lookup, 5*time.Millisecond)

	verdicts := make(chan bool, 1)
	checker.Check(context.Background(), "INV-7", 7, func(v bool) { verdicts <- v })
	require.False(t, waitForVerdict(t, verdicts))
}

func TestDuplicateCheckerEmptyCandidateImmediateFalse(t *testing.T) {
	var calls atomic.Int32
	lookup := func(ctx context.Context, number string) ([]Invoice, error) {
		calls.Add(1)
		return nil, nil
	}
	checker := NewDuplicateChecker(lookup, time.Millisecond)

	verdicts := make(chan bool, 1)
	checker.Check(context.Background(), "   ", 0, func(v bool) { verdicts <- v })
	require.False(t, waitForVerdict(t, verdicts))
	require.Equal(t, int32(0), calls.Load())
}

func TestDuplicateCheckerLookupFailureDegradesToFalse(t *testing.T) {
	lookup := func(ctx context.Context, number string) ([]Invoice, error) {
		return nil, errors.New("connection refused")
	}
	checker := NewDuplicateChecker(lookup, time.Millisecond)

	verdicts := make(chan bool, 1)
	checker.Check(context.Background(), "INV-1", 0, func(v bool) { verdicts <- v })
	require.False(t, waitForVerdict(t, verdicts))
}

func TestDuplicateCheckerSupersededCheckDiscarded(t *testing.T) {
	release := make(chan struct{})
	lookup := func(ctx context.Context, number string) ([]Invoice, error) {
		if number == "SLOW" {
			<-release
			return []Invoice{{ID: 1, InvoiceNumber: "SLOW"}}, nil
		}
		return nil, nil
	}
	checker := NewDuplicateChecker(lookup, time.Millisecond)

	var slowApplied atomic.Bool
	checker.Check(context.Background(), "SLOW", 0, func(bool) { slowApplied.Store(true) })
	time.Sleep(10 * time.Millisecond) // let the slow lookup start

	verdicts := make(chan bool, 1)
	checker.Check(context.Background(), "FAST", 0, func(v bool) { verdicts <- v })
	close(release)

	require.False(t, waitForVerdict(t, verdicts))
	time.Sleep(10 * time.Millisecond)
	require.False(t, slowApplied.Load(), "stale verdict must not be applied")
}

func TestDuplicateCheckerDebounceCoalescesBursts(t *testing.T) {
	var calls atomic.Int32
	lookup := func(ctx context.Context, number string) ([]Invoice, error) {
		calls.Add(1)
		return nil, nil
	}
	checker := NewDuplicateChecker(lookup, 30*time.Millisecond)

	verdicts := make(chan bool, 4)
	for _, candidate := range []string{"I", "IN", "INV", "INV-1"} {
		checker.Check(context.Background(), candidate, 0, func(v bool) { verdicts <- v })
	}
	require.False(t, waitForVerdict(t, verdicts))
	require.Equal(t, int32(1), calls.Load(), "only the final candidate should hit the lookup")
}

func TestDuplicateCheckerCancel(t *testing.T) {
	var applied atomic.Bool
	checker := NewDuplicateChecker(func(ctx context.Context, number string) ([]Invoice, error) {
		return nil, nil
	}, time.Millisecond)

	checker.Check(context.Background(), "INV-1", 0, func(bool) { applied.Store(true) })
	checker.Cancel()
	time.Sleep(20 * time.Millisecond)
	require.False(t, applied.Load())
}
