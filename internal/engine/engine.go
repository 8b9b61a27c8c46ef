// Package engine owns the household State. It serializes every mutation as
// a single load-apply-save transaction and serves reads from the last
// committed snapshot.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/foyer/internal/catalog"
	"github.com/dukerupert/foyer/internal/eligibility"
	"github.com/dukerupert/foyer/internal/ledger"
	"github.com/dukerupert/foyer/internal/model"
	"github.com/dukerupert/foyer/internal/reward"
	"github.com/dukerupert/foyer/internal/store"
)

// Policy holds the household rules that vary between installations.
type Policy struct {
	OneOffRepeatable bool
	Fulfillment      reward.Fulfillment
	Balance          reward.BalanceMode
	Goal             ledger.Goal
}

func DefaultPolicy() Policy {
	return Policy{
		OneOffRepeatable: true,
		Fulfillment:      reward.FulfillmentImmediate,
		Balance:          reward.BalanceMember,
		Goal:             ledger.Goal{Name: "Sortie Cinéma", Points: 100},
	}
}

// Event describes a committed change. It is delivered after the snapshot
// is saved.
type Event struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	Member string `json:"member,omitempty"`
}

type Notifier interface {
	Notify(Event)
}

// Notifiers fans one event out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(ev Event) {
	for _, n := range ns {
		n.Notify(ev)
	}
}

// Recorder receives per-operation measurements.
type Recorder interface {
	ObserveOperation(op string, d time.Duration, err error)
	ObserveState(st model.State)
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.clock = now }
}

// WithLocation sets the time zone that decides calendar dates.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

type Engine struct {
	mu    sync.RWMutex
	state model.State
	gw    store.Gateway

	clock    func() time.Time
	loc      *time.Location
	policy   Policy
	logger   *slog.Logger
	notifier Notifier
	recorder Recorder
}

// New loads the current snapshot from gw. A snapshot that cannot be read is
// logged and replaced by the default state; the replacement is written by the
// next successful mutation.
func New(ctx context.Context, gw store.Gateway, opts ...Option) *Engine {
	e := &Engine{
		gw:     gw,
		clock:  time.Now,
		loc:    time.Local,
		policy: DefaultPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")

	st, err := gw.Load(ctx)
	if err != nil {
		e.logger.Error("load snapshot failed, starting from default state", "error", err)
		st = model.DefaultState()
	}
	st.Normalize()
	if dropped := catalog.Prune(&st); len(dropped) > 0 {
		e.logger.Warn("dropped invalid custom tasks", "tasks", dropped)
	}
	e.state = st
	if e.recorder != nil {
		e.recorder.ObserveState(st)
	}
	return e
}

func (e *Engine) Policy() Policy { return e.policy }

// Now returns the current time in the household time zone.
func (e *Engine) Now() time.Time {
	return e.clock().In(e.loc)
}

func (e *Engine) eligibilityOptions() eligibility.Options {
	return eligibility.Options{OneOffRepeatable: e.policy.OneOffRepeatable}
}

func (e *Engine) rewardOptions() reward.Options {
	return reward.Options{Fulfillment: e.policy.Fulfillment, Balance: e.policy.Balance}
}

// Snapshot returns a deep copy of the committed state.
func (e *Engine) Snapshot() model.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// view runs fn against the committed state under the read lock. fn must not
// retain st.
func (e *Engine) view(fn func(st *model.State)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(&e.state)
}

// update applies fn to a copy of the state and commits the copy only if fn
// succeeds and the snapshot is saved.
func (e *Engine) update(ctx context.Context, op string, fn func(st *model.State) (Event, error)) error {
	start := time.Now()

	e.mu.Lock()
	next := e.state.Clone()
	ev, err := fn(&next)
	if err == nil {
		if serr := e.gw.Save(ctx, next); serr != nil {
			err = fmt.Errorf("save snapshot: %w", serr)
		} else {
			e.state = next
		}
	}
	var committed model.State
	if e.recorder != nil {
		committed = e.state.Clone()
	}
	e.mu.Unlock()

	if e.recorder != nil {
		e.recorder.ObserveOperation(op, time.Since(start), err)
		if err == nil {
			e.recorder.ObserveState(committed)
		}
	}

	if err != nil {
		if IsDomainError(err) {
			e.logger.Debug("operation refused", "op", op, "error", err)
		} else {
			e.logger.Error("operation failed", "op", op, "error", err)
		}
		return err
	}

	e.logger.Debug("operation committed", "op", op, "entity", ev.Entity, "id", ev.ID)
	if e.notifier != nil {
		e.notifier.Notify(ev)
	}
	return nil
}

// Restore replaces the whole state, for example from a backup.
func (e *Engine) Restore(ctx context.Context, st model.State) error {
	return e.update(ctx, "restore", func(cur *model.State) (Event, error) {
		st = st.Clone()
		st.Normalize()
		if dropped := catalog.Prune(&st); len(dropped) > 0 {
			e.logger.Warn("dropped invalid custom tasks from restored state", "tasks", dropped)
		}
		*cur = st
		return Event{Entity: "state", Action: "restored"}, nil
	})
}

// IsDomainError reports whether err is one of the model's user-facing
// errors rather than an infrastructure failure.
func IsDomainError(err error) bool {
	var (
		v  *model.ValidationError
		ie *model.IneligibleError
		ip *model.InsufficientPointsError
		ao *model.AlreadyOwnedError
		nf *model.NotFoundError
		ae *model.AuthenticationError
	)
	return errors.As(err, &v) || errors.As(err, &ie) || errors.As(err, &ip) ||
		errors.As(err, &ao) || errors.As(err, &nf) || errors.As(err, &ae)
}
