// Package simcontext implements the Context orchestrator (C9): the main
// loop owns the plan queue, the immediate-callback queue, the event bus,
// the property store, the data-plugin registry and the RNG registry, and
// exposes the engine's single public API surface over all of them.
package simcontext

import (
	"iter"
	"log/slog"

	"github.com/smilemakc/simcore/entity"
	"github.com/smilemakc/simcore/event"
	"github.com/smilemakc/simcore/planqueue"
	"github.com/smilemakc/simcore/plugin"
	"github.com/smilemakc/simcore/query"
	"github.com/smilemakc/simcore/rng"
	"github.com/smilemakc/simcore/simtime"
)

// Context is the engine's single entry point. It is not safe for
// concurrent use: every method must be called from the main loop or from
// a callback the main loop is currently running.
type Context struct {
	plans              *planqueue.Queue
	immediate          []func()
	Bus                *event.Bus
	store              *entity.Store
	plugins            *plugin.Registry
	rng                *rng.Registry
	log                *slog.Logger
	shutdown           bool
	periodicID         uint64
	periodicCancellers map[planqueue.ID]func()
}

// periodicIDBase separates the synthetic IDs AddPeriodicPlan hands back
// (which identify the *recurring* schedule, stable across reschedules)
// from the plan queue's own IDs (which identify one concrete firing and
// change every time a periodic plan reschedules itself).
const periodicIDBase = planqueue.ID(1 << 62)

// New builds a Context seeded for deterministic replay. logger may be
// nil, in which case slog.Default() is used.
func New(baseSeed uint64, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	bus := event.New()
	return &Context{
		plans:              planqueue.New(),
		Bus:                bus,
		store:              entity.New(bus),
		plugins:            plugin.New(),
		rng:                rng.New(baseSeed),
		log:                logger.With("component", "simcontext"),
		periodicCancellers: make(map[planqueue.ID]func()),
	}
}

// Logger returns the Context's structured logger.
func (c *Context) Logger() *slog.Logger { return c.log }

// GetCurrentTime returns the virtual time of the plan currently
// executing, or of the last plan that fired.
func (c *Context) GetCurrentTime() float64 { return c.plans.Now() }

// AddPlan schedules callback to run at time in phase. See
// simerr.InvalidTimeError for rejection conditions.
func (c *Context) AddPlan(time float64, phase simtime.Phase, callback func()) (planqueue.ID, error) {
	return c.plans.Add(time, phase, callback)
}

// AddPeriodicPlan schedules callback to run every interval virtual-time
// units, starting at GetCurrentTime()+interval, until CancelPlan is
// called on the returned id or Shutdown is called. Each firing invokes
// callback first and schedules the next firing only afterwards, unless
// the plan was cancelled or Shutdown was called meanwhile, so cancelling
// inside callback prevents further firings.
func (c *Context) AddPeriodicPlan(interval float64, phase simtime.Phase, callback func()) (planqueue.ID, error) {
	c.periodicID++
	virtualID := periodicIDBase + planqueue.ID(c.periodicID)
	cancelled := false

	var scheduleNext func(at float64) error
	scheduleNext = func(at float64) error {
		_, err := c.plans.Add(at, phase, func() {
			if cancelled {
				return
			}
			callback()
			if cancelled || c.shutdown {
				return
			}
			_ = scheduleNext(c.GetCurrentTime() + interval)
		})
		return err
	}

	if err := scheduleNext(c.GetCurrentTime() + interval); err != nil {
		return 0, err
	}
	c.periodicCancellers[virtualID] = func() { cancelled = true }
	return virtualID, nil
}

// CancelPlan cancels a previously scheduled plan. Idempotent: cancelling
// an unknown, already-fired, or already-cancelled id is a no-op.
func (c *Context) CancelPlan(id planqueue.ID) {
	if cancel, ok := c.periodicCancellers[id]; ok {
		cancel()
		delete(c.periodicCancellers, id)
		return
	}
	c.plans.Cancel(id)
}

// QueueCallback appends callback to the immediate-callback queue, which
// fully drains (FIFO, including callbacks it enqueues) before the next
// plan fires.
func (c *Context) QueueCallback(callback func()) {
	c.immediate = append(c.immediate, callback)
}

// Shutdown requests the main loop stop after the current callback
// returns and the immediate queue drains.
func (c *Context) Shutdown() {
	c.shutdown = true
}

// Execute runs the main loop: drain immediate callbacks, then pop and
// fire the next ready plan, repeating until both the immediate queue and
// the plan queue are empty or Shutdown has been called.
func (c *Context) Execute() {
	for {
		if len(c.immediate) > 0 {
			cb := c.immediate[0]
			c.immediate = c.immediate[1:]
			cb()
			continue
		}
		if c.shutdown {
			return
		}
		t, _, cb, ok := c.plans.PopReady()
		if !ok {
			return
		}
		c.log.Debug("firing plan", "time", t)
		cb()
	}
}

// Store exposes the underlying property store for the generic
// RegisterProperty/RegisterMultiProperty/IndexProperty helpers in
// package entity, which cannot be Context methods because Go forbids
// generic methods.
func (c *Context) Store() *entity.Store { return c.store }

// AddEntity creates a new entity of entityType. See entity.Store.AddEntity.
func (c *Context) AddEntity(entityType string, values ...entity.PropertyValue) (entity.ID, error) {
	return c.store.AddEntity(entityType, values...)
}

// GetProperty reads id's current value for name. See entity.Store.GetProperty.
func (c *Context) GetProperty(id entity.ID, name string) any {
	return c.store.GetProperty(id, name)
}

// SetProperty writes id's value for name and queues any resulting
// PropertyChangeEvent dispatch as immediate callbacks, so handlers run
// during the next immediate-drain phase rather than synchronously.
func (c *Context) SetProperty(id entity.ID, name string, value any) {
	thunks := c.store.SetProperty(id, name, value)
	for _, th := range thunks {
		c.QueueCallback(th)
	}
}

// EntityCount returns the number of entityType entities created so far.
func (c *Context) EntityCount(entityType string) uint64 {
	return c.store.EntityCount(entityType)
}

// Query returns every entity of entityType matching every predicate.
func (c *Context) Query(entityType string, preds []query.Predicate) []entity.ID {
	return query.Result(c.store, entityType, preds)
}

// QueryCount is len(Query(...)) without materializing the slice twice.
func (c *Context) QueryCount(entityType string, preds []query.Predicate) int {
	return query.Count(c.store, entityType, preds)
}

// EntityIterator returns a lazy sequence over every entity of entityType,
// in index order, without materializing a []entity.ID slice.
func (c *Context) EntityIterator(entityType string) iter.Seq[entity.ID] {
	return entity.EntityIterator(c.store, entityType)
}

// QueryResultIterator returns a lazy sequence over Query's matches,
// applying the slow-path filter candidate by candidate as the sequence is
// walked rather than up front.
func (c *Context) QueryResultIterator(entityType string, preds []query.Predicate) iter.Seq[entity.ID] {
	return query.QueryResultIterator(c.store, entityType, preds)
}

// WithQueryResults calls visit once per entity of entityType matching
// every predicate in preds, stopping early the moment visit returns
// false.
func (c *Context) WithQueryResults(entityType string, preds []query.Predicate, visit func(entity.ID) bool) {
	query.WithQueryResults(c.store, entityType, preds, visit)
}

// SampleEntity draws one uniformly-random match for preds from the named
// RNG stream.
func (c *Context) SampleEntity(stream rng.StreamID, entityType string, preds []query.Predicate) (entity.ID, error) {
	return query.SampleEntity(c.rng, stream, c.store, entityType, preds)
}

// SampleEntities draws up to n uniformly-random matches for preds,
// without replacement, from the named RNG stream.
func (c *Context) SampleEntities(stream rng.StreamID, entityType string, preds []query.Predicate, n int) ([]entity.ID, error) {
	return query.SampleEntities(c.rng, stream, c.store, entityType, preds, n)
}

// Tabulate groups entityType's population by the tuple of properties
// named, reconciling indices first where available.
func (c *Context) Tabulate(entityType string, properties []string) []query.Row {
	return query.Tabulate(c.store, entityType, properties)
}

// RNG exposes the RNG registry for the generic Sample helpers in package
// rng, which cannot be Context methods.
func (c *Context) RNG() *rng.Registry { return c.rng }

// Plugins exposes the plugin registry for the generic Get/GetMut helpers
// in package plugin, which cannot be Context methods.
func (c *Context) Plugins() *plugin.Registry { return c.plugins }
