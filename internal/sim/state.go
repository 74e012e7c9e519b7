// Package sim contains the components and systems of the flock demo. It is
// the consumer side of the engine: registry, views, a group on the hot path,
// the job pool for integration, and the event bus between systems.
package sim

import (
	"unsafe"

	"github.com/tidecraft/simcore/ecs"
	"github.com/tidecraft/simcore/event"
	"github.com/tidecraft/simcore/jobs"
	"github.com/tidecraft/simcore/mem"
)

// State is the shared region every system works against.
type State struct {
	Registry *ecs.Registry
	Jobs     *jobs.Pool
	Bus      *event.Bus

	// Moving is the hot-path group: every particle with both Position and
	// Velocity, prefix-contiguous in both pools.
	Moving *ecs.Group2[Position, Velocity]

	// Scratch is per-step transient memory; reset at step start.
	Scratch *mem.Arena

	WorldWidth  float64
	WorldHeight float64

	positions  *ecs.Pool[Position]
	velocities *ecs.Pool[Velocity]
	accels     *ecs.Pool[Acceleration]

	destroyQueue []ecs.Entity
}

// NewState assembles the shared region and claims the (Position, Velocity)
// group. Panics if those types are already grouped; the demo owns them.
func NewState(r *ecs.Registry, pool *jobs.Pool, scratch *mem.Arena, w, h float64) *State {
	moving, ok := ecs.NewGroup2[Position, Velocity](r)
	if !ok {
		panic("sim: position/velocity already grouped")
	}
	return &State{
		Registry:     r,
		Jobs:         pool,
		Bus:          event.NewBus(),
		Moving:       moving,
		Scratch:      scratch,
		WorldWidth:   w,
		WorldHeight:  h,
		positions:    ecs.PoolOf[Position](r),
		velocities:   ecs.PoolOf[Velocity](r),
		accels:       ecs.PoolOf[Acceleration](r),
		destroyQueue: make([]ecs.Entity, 0, 64),
	}
}

// ScratchFloats returns a zeroed n-float slice from the step arena.
func (s *State) ScratchFloats(n int) []float64 {
	if n == 0 {
		return nil
	}
	buf := s.Scratch.Alloc(n * 8)
	f := unsafe.Slice((*float64)(unsafe.Pointer(&buf[0])), n)
	for i := range f {
		f[i] = 0
	}
	return f
}

// QueueDestroy marks an entity for end-of-step destruction.
func (s *State) QueueDestroy(e ecs.Entity) {
	s.destroyQueue = append(s.destroyQueue, e)
}

// FlushDestroyQueue destroys queued entities. Called by CleanupSystem.
func (s *State) FlushDestroyQueue() int {
	n := len(s.destroyQueue)
	for _, e := range s.destroyQueue {
		s.Registry.Destroy(e)
	}
	s.destroyQueue = s.destroyQueue[:0]
	return n
}
