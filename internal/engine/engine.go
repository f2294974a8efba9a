// Package engine applies user mutations to the goal tree.
//
// Each operation validates its input, locks the affected subtree, applies
// the change to the in-memory store, and then persists it through the
// gateway. If the persist fails the local change is undone exactly and the
// gateway's error is returned. Reads never wait on a persist in flight.
package engine

import (
	"context"
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/gateway"
	"github.com/alexanderramin/goaltree/internal/observability"
	"github.com/alexanderramin/goaltree/internal/progress"
	"github.com/alexanderramin/goaltree/internal/store"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Engine is the single entry point for changing a goal tree.
type Engine struct {
	store    *store.Store
	gw       gateway.Gateway
	clock    progress.Clock
	owner    string
	scope    gateway.Scope
	observer observability.UseCaseObserver
	metrics  *observability.Metrics
	tracer   trace.Tracer
	newID    func() string
	reloads  singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c progress.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithOwner sets the owner recorded on new root goals.
func WithOwner(id string) Option {
	return func(e *Engine) { e.owner = id }
}

// WithScope sets which goals Reload fetches.
func WithScope(s gateway.Scope) Option {
	return func(e *Engine) { e.scope = s }
}

func WithObserver(o observability.UseCaseObserver) Option {
	return func(e *Engine) { e.observer = observability.ObserverOrNoop(o) }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithIDGenerator replaces the uuid generator for new entities.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// New creates an Engine over s that persists through gw.
func New(s *store.Store, gw gateway.Gateway, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		gw:       gw,
		clock:    progress.SystemClock{},
		observer: observability.NoopUseCaseObserver{},
		tracer:   observability.Tracer(nil),
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Snapshot returns a deep copy of the current tree.
func (e *Engine) Snapshot() *domain.Tree {
	return e.store.Snapshot()
}

// Progress returns the completion percentage of goal id as of now.
func (e *Engine) Progress(id string) (int, error) {
	g, err := e.store.Goal(id)
	if err != nil {
		return 0, err
	}
	return progress.Compute(g, e.clock.Now()), nil
}

// Goal returns a copy of goal id with its subtree.
func (e *Engine) Goal(id string) (*domain.GoalNode, error) {
	return e.store.Goal(id)
}

// Checklist returns checklist leaf id and the id of the goal that owns it.
func (e *Engine) Checklist(id string) (domain.ChecklistLeaf, string, error) {
	return e.store.Checklist(id)
}

// Streak returns streak leaf id and the id of the goal that owns it.
func (e *Engine) Streak(id string) (domain.StreakLeaf, string, error) {
	return e.store.Streak(id)
}

// Reload replaces the local tree with the gateway's copy. Concurrent calls
// share one fetch. It fails with ErrBusy while any mutation is in flight.
func (e *Engine) Reload(ctx context.Context) error {
	_, err, _ := e.reloads.Do("reload", func() (any, error) {
		return nil, e.run(ctx, domain.OpReload, "", func(ctx context.Context) error {
			release, err := e.store.LockForest()
			if err != nil {
				return err
			}
			defer release()

			tree, err := e.gw.LoadTree(ctx, e.scope)
			if err != nil {
				return err
			}
			return e.store.Load(tree)
		})
	})
	return err
}

// run wraps one operation in a span, a use-case event and metrics.
func (e *Engine) run(ctx context.Context, op domain.Operation, id string, fn func(ctx context.Context) error) (err error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "engine."+string(op),
		trace.WithAttributes(attribute.String("goaltree.op", string(op)), attribute.String("goaltree.id", id)))
	defer func() {
		observability.EndSpan(span, err)
		elapsed := time.Since(start)
		if e.metrics != nil {
			e.metrics.MutationsTotal.WithLabelValues(string(op), observability.ResultLabel(err)).Inc()
			e.metrics.MutationDuration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
		}
		e.observer.ObserveUseCase(ctx, observability.UseCaseEvent{
			Name:      string(op),
			Duration:  elapsed,
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"id": id},
			StartedAt: start,
		})
	}()
	return fn(ctx)
}

// persist calls the gateway and undoes the local apply if it fails.
func (e *Engine) persist(op domain.Operation, undo store.Undo, call func() (gateway.Result, error)) (gateway.Result, error) {
	res, err := call()
	if err != nil {
		undo()
		if e.metrics != nil {
			e.metrics.RollbacksTotal.WithLabelValues(string(op)).Inc()
		}
		return gateway.Result{}, err
	}
	return res, nil
}
