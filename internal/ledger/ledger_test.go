package ledger

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"reviewdesk/internal/domain"
)

func TestPutLastOutcomeWins(t *testing.T) {
	l := New()
	l.Put("1", domain.OutcomeApprove)
	l.Put("2", domain.OutcomeSkip)
	l.Put("1", domain.OutcomeReject)

	want := []domain.Decision{
		{OrderID: "1", Outcome: domain.OutcomeReject},
		{OrderID: "2", Outcome: domain.OutcomeSkip},
	}
	if diff := cmp.Diff(want, l.Decisions()); diff != "" {
		t.Fatalf("decisions mismatch (-want +got):\n%s", diff)
	}
}

func TestReplayKeepsOneEntryPerOrder(t *testing.T) {
	outcomes := []domain.Outcome{domain.OutcomeApprove, domain.OutcomeReject, domain.OutcomeSkip}
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		l := New()
		last := make(map[string]domain.Outcome)
		for i := 0; i < 40; i++ {
			id := strconv.Itoa(rng.Intn(10))
			o := outcomes[rng.Intn(len(outcomes))]
			l.Put(id, o)
			last[id] = o
		}

		got := l.Decisions()
		if len(got) != len(last) {
			t.Fatalf("round %d: %d entries, want %d", round, len(got), len(last))
		}
		seen := make(map[string]bool)
		for _, d := range got {
			if seen[d.OrderID] {
				t.Fatalf("round %d: duplicate entry for %s", round, d.OrderID)
			}
			seen[d.OrderID] = true
			if d.Outcome != last[d.OrderID] {
				t.Fatalf("round %d: order %s = %s, want %s", round, d.OrderID, d.Outcome, last[d.OrderID])
			}
		}
	}
}

func TestSettleKeepsEntriesChangedAfterSubmission(t *testing.T) {
	l := New()
	l.Put("1", domain.OutcomeApprove)
	l.Put("2", domain.OutcomeApprove)
	submitted := l.Decisions()

	l.Put("2", domain.OutcomeReject)
	l.Put("3", domain.OutcomeSkip)

	if remaining := l.Settle(submitted); remaining != 2 {
		t.Fatalf("remaining = %d, want 2", remaining)
	}
	want := []domain.Decision{
		{OrderID: "2", Outcome: domain.OutcomeReject},
		{OrderID: "3", Outcome: domain.OutcomeSkip},
	}
	if diff := cmp.Diff(want, l.Decisions()); diff != "" {
		t.Fatalf("decisions mismatch (-want +got):\n%s", diff)
	}
}

func TestSettleEverythingSubmitted(t *testing.T) {
	l := New()
	l.Put("1", domain.OutcomeApprove)
	l.Put("2", domain.OutcomeSkip)
	if remaining := l.Settle(l.Decisions()); remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d", l.Len())
	}
}
