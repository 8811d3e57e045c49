// Package ledger accumulates per-order review decisions until they are
// submitted.
package ledger

import (
	"sync"

	"reviewdesk/internal/domain"
)

// Ledger maps order IDs to their latest outcome. Order IDs keep the position
// of their first decision, so submissions are stable across re-decisions.
type Ledger struct {
	mu       sync.Mutex
	order    []string
	outcomes map[string]domain.Outcome
}

func New() *Ledger {
	return &Ledger{outcomes: make(map[string]domain.Outcome)}
}

// Put records outcome for orderID, replacing any earlier outcome.
func (l *Ledger) Put(orderID string, outcome domain.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.outcomes[orderID]; !ok {
		l.order = append(l.order, orderID)
	}
	l.outcomes[orderID] = outcome
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.outcomes)
}

// Decisions returns the entries in first-decided order.
func (l *Ledger) Decisions() []domain.Decision {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Decision, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, domain.Decision{OrderID: id, Outcome: l.outcomes[id]})
	}
	return out
}

// Settle drops the submitted entries whose outcome has not changed since
// submission and returns how many entries remain.
func (l *Ledger) Settle(submitted []domain.Decision) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range submitted {
		if cur, ok := l.outcomes[d.OrderID]; ok && cur == d.Outcome {
			delete(l.outcomes, d.OrderID)
		}
	}
	kept := l.order[:0]
	for _, id := range l.order {
		if _, ok := l.outcomes[id]; ok {
			kept = append(kept, id)
		}
	}
	l.order = kept
	return len(l.outcomes)
}
