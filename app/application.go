// Package app is the scene container driving top-level application flow.
// States are registered by key, constructed lazily through factories, and
// share a single common region (typically holding the registry, the job
// pool, and whatever else every scene needs).
package app

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// State is one scene. Init runs when the state becomes current (again after
// every transition to it, unless it was cached), Update once per frame, and
// Final when the state is discarded.
type State interface {
	Init() error
	Update() error
	Final() error
}

// Factory builds a state instance on demand.
type Factory[K comparable, R any] func(a *Application[K, R]) State

type stateSlot[K comparable] struct {
	key      K
	instance State
}

// Application owns the state table, the current state, and an optional
// cached previous state for cheap back-transitions (pause screens and the
// like).
type Application[K comparable, R any] struct {
	common    *R
	factories map[K]Factory[K, R]

	current stateSlot[K]
	cached  *stateSlot[K]

	pending      *K
	pendingCache bool
	end          bool

	log *zap.Logger
}

// New creates an application around a shared common region. A nil logger
// disables transition logging.
func New[K comparable, R any](common *R, log *zap.Logger) *Application[K, R] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Application[K, R]{
		common:    common,
		factories: make(map[K]Factory[K, R]),
		log:       log,
	}
}

// Common returns the shared region.
func (a *Application[K, R]) Common() *R {
	return a.common
}

// AddState registers a factory under key. Panics on a duplicate key: the
// state table is wired once at startup and a silent overwrite hides a bug.
func (a *Application[K, R]) AddState(key K, f Factory[K, R]) {
	if _, exists := a.factories[key]; exists {
		panic(fmt.Sprintf("app: state %v already registered", key))
	}
	a.factories[key] = f
}

// Init constructs the first state and runs its Init.
func (a *Application[K, R]) Init(first K) error {
	f, ok := a.factories[first]
	if !ok {
		return fmt.Errorf("app: unknown state %v", first)
	}
	a.current = stateSlot[K]{key: first, instance: f(a)}
	a.end = false
	a.log.Debug("initial state", zap.Any("key", first))
	return a.current.instance.Init()
}

// Update advances the application one frame: it applies a pending
// transition, then updates the current state.
func (a *Application[K, R]) Update() error {
	if a.pending != nil {
		if err := a.applyTransition(); err != nil {
			return err
		}
	}
	if a.end {
		return nil
	}
	return a.current.instance.Update()
}

// ChangeState schedules a transition for the start of the next Update.
// With cachePrev the current state is kept alive and restored without
// re-initialisation if the application later transitions back to its key.
func (a *Application[K, R]) ChangeState(key K, cachePrev bool) {
	k := key
	a.pending = &k
	a.pendingCache = cachePrev
}

// Exit schedules application shutdown; Done reports it.
func (a *Application[K, R]) Exit() {
	a.end = true
}

// Done reports whether Exit has been called.
func (a *Application[K, R]) Done() bool {
	return a.end
}

// Run loops Update until Done. Errors from the loop and from the final
// teardown are aggregated.
func (a *Application[K, R]) Run() error {
	var errs error
	for !a.end {
		if err := a.Update(); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
	}
	if a.current.instance != nil {
		errs = multierr.Append(errs, a.current.instance.Final())
	}
	if a.cached != nil {
		errs = multierr.Append(errs, a.cached.instance.Final())
		a.cached = nil
	}
	return errs
}

func (a *Application[K, R]) applyTransition() error {
	key := *a.pending
	cache := a.pendingCache
	a.pending = nil

	a.log.Debug("state transition",
		zap.Any("from", a.current.key),
		zap.Any("to", key),
		zap.Bool("cache_prev", cache),
	)

	prev := a.current

	// Restore from cache when transitioning back to the cached key.
	if a.cached != nil && a.cached.key == key {
		a.current = *a.cached
		a.cached = nil
		return a.retire(prev, cache)
	}

	f, ok := a.factories[key]
	if !ok {
		return fmt.Errorf("app: unknown state %v", key)
	}
	a.current = stateSlot[K]{key: key, instance: f(a)}
	if err := a.retire(prev, cache); err != nil {
		return err
	}
	return a.current.instance.Init()
}

func (a *Application[K, R]) retire(prev stateSlot[K], cache bool) error {
	if cache {
		var errs error
		if a.cached != nil {
			errs = a.cached.instance.Final()
		}
		a.cached = &prev
		return errs
	}
	return prev.instance.Final()
}
