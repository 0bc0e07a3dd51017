package tracker

import (
	"time"

	"github.com/sisu-network/lib/log"
)

// CheckForTimedOutOperations runs one sweeper pass: every operation still
// PENDING past the configured budget is canceled through the shared
// cancellation path, tagged as a timeout. The caller schedules recurrence.
func (t *Tracker) CheckForTimedOutOperations() {
	budget := t.cfg.PendingOperationTimeout()
	if budget <= 0 {
		return
	}

	ids := t.registry.PendingOlderThan(budget, time.Now())
	for _, id := range ids {
		log.Warnf("Operation %s has been pending for more than %s, canceling it", id, budget)
		t.CancelOperation(id, CancelReasonTimeout)
	}
}
