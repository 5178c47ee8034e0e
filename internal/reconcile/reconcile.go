// File path: internal/reconcile/reconcile.go
package reconcile

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wildtrack/censusd/internal/common"
	"github.com/wildtrack/censusd/internal/store"
)

// DefaultSchedule is the cron spec used when no interval override is given.
const DefaultSchedule = "@every 15m"

// Reconciler periodically re-derives species population aggregates from the
// census ledger. Aggregates are maintained transactionally on every write,
// so a sweep normally finds nothing; it repairs drift after manual database
// edits or a restore from backup.
type Reconciler struct {
	store    *store.Store
	cron     *cron.Cron
	schedule string
}

// New builds a reconciler on the given store. An empty schedule selects
// DefaultSchedule; an interval such as 30m is passed as "@every 30m".
func New(st *store.Store, schedule string) *Reconciler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Reconciler{
		store:    st,
		cron:     cron.New(),
		schedule: schedule,
	}
}

// Start registers the sweep job and launches the scheduler. It runs one
// sweep immediately so drift present at boot is repaired before the first
// tick.
func (r *Reconciler) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.schedule, func() { r.sweep(ctx) }); err != nil {
		return err
	}
	r.sweep(ctx)
	r.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (r *Reconciler) Stop() {
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		common.Logger().Warn("reconciler stop timed out")
	}
}

func (r *Reconciler) sweep(ctx context.Context) {
	fixed, err := r.store.ReconcileAggregates(ctx)
	if err != nil {
		common.Logger().Error("aggregate reconciliation failed", "error", err)
		return
	}
	if fixed > 0 {
		common.Logger().Warn("repaired drifted species aggregates", "count", fixed)
		return
	}
	common.Logger().Debug("aggregate reconciliation clean")
}
