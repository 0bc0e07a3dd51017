package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/sisu-network/drelay/types"
)

// trackedOperation pairs one operation's record with its own lock so that
// read-modify-write sequences from the engine callback, the confirmation
// handler and the sweeper never interleave on the same record. Updates to
// different operations proceed in parallel.
type trackedOperation struct {
	lock sync.Mutex

	tracking types.OperationTracking
	route    *types.Route

	// Single-flight bit for the confirmation race. Set while a handler race
	// is in flight so repeated engine updates cannot start a second one.
	confirming bool

	// Set once a cancel claimed this operation, so concurrent cancels issue
	// at most one engine stop.
	canceling bool

	// Set once auto-confirm asked the engine to resume the current action;
	// cleared when a snapshot shows the execution moved past it.
	resumeRequested bool
}

// Registry is the keyed store of per-operation tracking records. Entries are
// never deleted; a registry miss is distinguishable from a terminal entry.
type Registry struct {
	lock sync.RWMutex
	ops  map[string]*trackedOperation
}

func NewRegistry() *Registry {
	return &Registry{
		ops: make(map[string]*trackedOperation),
	}
}

func (r *Registry) get(id string) *trackedOperation {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.ops[id]
}

// Create registers a new PENDING operation. It fails if the id is taken.
func (r *Registry) Create(id string, intent types.TransferIntent) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.ops[id]; ok {
		return fmt.Errorf("operation %s is already registered", id)
	}

	r.ops[id] = &trackedOperation{
		tracking: types.OperationTracking{
			OperationId:   id,
			Status:        types.OpStatusPending,
			StartTime:     time.Now(),
			Intent:        intent,
			StatusMessage: "Operation submitted for execution",
		},
	}

	return nil
}

// Get returns a copy of the tracking record.
func (r *Registry) Get(id string) (types.OperationTracking, bool) {
	op := r.get(id)
	if op == nil {
		return types.OperationTracking{}, false
	}

	op.lock.Lock()
	defer op.lock.Unlock()

	return op.tracking, true
}

// Update applies mutate atomically under the operation's lock. A terminal
// record is frozen: the whole mutation is skipped, so a late engine update
// can neither revive a FAILED operation nor rewrite its caller-facing
// fields. The awaiting-details flag is forced false once a record turns
// terminal.
func (r *Registry) Update(id string, mutate func(op *types.OperationTracking)) error {
	op := r.get(id)
	if op == nil {
		return fmt.Errorf("operation %s is not registered", id)
	}

	op.lock.Lock()
	defer op.lock.Unlock()

	if op.tracking.Status.IsTerminal() {
		return nil
	}

	mutate(&op.tracking)

	if op.tracking.Status.IsTerminal() {
		op.tracking.IsAwaitingConfirmationDetails = false
	}

	return nil
}

// SetRoute stores the latest route snapshot reported by the engine.
func (r *Registry) SetRoute(id string, route *types.Route) {
	op := r.get(id)
	if op == nil {
		return
	}

	op.lock.Lock()
	defer op.lock.Unlock()

	op.route = route
}

// Route returns the latest stored route snapshot, or nil.
func (r *Registry) Route(id string) *types.Route {
	op := r.get(id)
	if op == nil {
		return nil
	}

	op.lock.Lock()
	defer op.lock.Unlock()

	return op.route
}

// BeginConfirmation marks the operation as having a confirmation race in
// flight. It returns false when a race is already running or the operation
// is unknown or terminal, so the race is started at most once per action.
func (r *Registry) BeginConfirmation(id string) bool {
	op := r.get(id)
	if op == nil {
		return false
	}

	op.lock.Lock()
	defer op.lock.Unlock()

	if op.confirming || op.tracking.Status.IsTerminal() {
		return false
	}

	op.confirming = true
	op.tracking.IsAwaitingConfirmationDetails = false

	return true
}

// BeginCancel atomically claims the right to cancel the operation. False
// means there is nothing for the caller to do: the operation is unknown,
// already terminal, or another cancel is in flight.
func (r *Registry) BeginCancel(id string) bool {
	op := r.get(id)
	if op == nil {
		return false
	}

	op.lock.Lock()
	defer op.lock.Unlock()

	if op.canceling || op.tracking.Status.IsTerminal() {
		return false
	}

	op.canceling = true

	return true
}

// MarkResumeRequested records that a resume was requested for the current
// action-required step. False means a resume is already pending or the
// operation is unknown or terminal.
func (r *Registry) MarkResumeRequested(id string) bool {
	op := r.get(id)
	if op == nil {
		return false
	}

	op.lock.Lock()
	defer op.lock.Unlock()

	if op.resumeRequested || op.tracking.Status.IsTerminal() {
		return false
	}

	op.resumeRequested = true

	return true
}

// ClearResumeRequested re-arms auto-confirm once the execution moved past the
// action it was resumed for.
func (r *Registry) ClearResumeRequested(id string) {
	op := r.get(id)
	if op == nil {
		return
	}

	op.lock.Lock()
	defer op.lock.Unlock()

	op.resumeRequested = false
}

// EndConfirmation clears the confirmation-in-flight bit once the race settled.
func (r *Registry) EndConfirmation(id string) {
	op := r.get(id)
	if op == nil {
		return
	}

	op.lock.Lock()
	defer op.lock.Unlock()

	op.confirming = false
}

// PublicResult projects the tracking record into the caller-facing result.
// An unknown id yields an UNKNOWN result rather than an error so the polling
// surface stays uniform.
func (r *Registry) PublicResult(id string) *types.OperationResult {
	op := r.get(id)
	if op == nil {
		return &types.OperationResult{
			OperationId: id,
			Status:      types.OpStatusUnknown,
			Error:       "operation not found",
		}
	}

	op.lock.Lock()
	defer op.lock.Unlock()

	t := op.tracking

	return &types.OperationResult{
		OperationId:    t.OperationId,
		Status:         t.Status,
		SourceTx:       t.SourceTx,
		DestinationTx:  t.DestinationTx,
		ReceivedAmount: t.ReceivedAmount,
		Error:          t.Error,
		StatusMessage:  t.StatusMessage,
	}
}

// PendingOlderThan returns the ids of operations still PENDING whose age
// exceeds the given budget.
func (r *Registry) PendingOlderThan(budget time.Duration, now time.Time) []string {
	r.lock.RLock()
	ids := make([]string, 0, len(r.ops))
	for id := range r.ops {
		ids = append(ids, id)
	}
	r.lock.RUnlock()

	expired := make([]string, 0)
	for _, id := range ids {
		op := r.get(id)
		if op == nil {
			continue
		}

		op.lock.Lock()
		if op.tracking.Status == types.OpStatusPending &&
			now.Sub(op.tracking.StartTime) > budget {
			expired = append(expired, id)
		}
		op.lock.Unlock()
	}

	return expired
}
