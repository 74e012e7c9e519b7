package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/tidecraft/simcore/ecs"
	"github.com/tidecraft/simcore/event"
	"github.com/tidecraft/simcore/jobs"
	"github.com/tidecraft/simcore/system"
)

// Expired is emitted when a particle's lifetime runs out. Delivered the
// following step, after the entity is already destroyed.
type Expired struct {
	Entity ecs.Entity
	Name   string
}

// SpawnSystem spawns every emitter batch on its first update.
type SpawnSystem struct {
	state    *State
	scenario *Scenario
	rng      *rand.Rand
	done     bool
}

func NewSpawnSystem(state *State, scenario *Scenario, rng *rand.Rand) *SpawnSystem {
	return &SpawnSystem{state: state, scenario: scenario, rng: rng}
}

func (s *SpawnSystem) Phase() system.Phase { return system.PhaseSpawn }

func (s *SpawnSystem) Update(_ time.Duration) {
	if s.done {
		return
	}
	s.done = true

	r := s.state.Registry
	for _, em := range s.scenario.Emitters {
		for i := 0; i < em.Count; i++ {
			e := r.Create()
			ecs.Add(r, e, Position{
				X: em.X + (s.rng.Float64()*2-1)*em.SpreadX,
				Y: em.Y + (s.rng.Float64()*2-1)*em.SpreadY,
			})

			speed := em.SpeedMin + s.rng.Float64()*(em.SpeedMax-em.SpeedMin)
			angle := s.rng.Float64() * 2 * math.Pi
			ecs.Add(r, e, Velocity{DX: speed * math.Cos(angle), DY: speed * math.Sin(angle)})
			ecs.Add(r, e, Acceleration{})
			ecs.Add(r, e, Lifetime{Remaining: em.Lifetime, Immortal: em.Lifetime == 0})
			if em.Frozen {
				ecs.Add(r, e, Frozen{})
			}
		}
	}
}

// EventDispatchSystem rotates the event bus and resets per-step scratch
// memory. Must be registered before any system that emits or reads events.
type EventDispatchSystem struct {
	state *State
}

func NewEventDispatchSystem(state *State) *EventDispatchSystem {
	return &EventDispatchSystem{state: state}
}

func (s *EventDispatchSystem) Phase() system.Phase { return system.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.state.Scratch.Reset()
	s.state.Bus.Swap()
	s.state.Bus.Dispatch()
}

// SteerSystem pulls every non-frozen particle toward the flock's centre of
// mass and damps its velocity. The centre is reduced in parallel over the
// moving group's prefix, with per-chunk partial sums in scratch memory.
type SteerSystem struct {
	state   *State
	pull    float64
	damping float64
}

func NewSteerSystem(state *State) *SteerSystem {
	return &SteerSystem{state: state, pull: 6.0, damping: 0.4}
}

func (s *SteerSystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *SteerSystem) Update(_ time.Duration) {
	g := s.state.Moving
	n := g.Size()
	if n == 0 {
		return
	}

	pos := s.state.positions.Raw()
	workers := s.state.Jobs.Size()
	sums := s.state.ScratchFloats(2 * workers)
	jobs.ParallelForChunk(s.state.Jobs, 0, n, func(lo, hi int) {
		var sx, sy float64
		for i := lo; i < hi; i++ {
			sx += pos[i].X
			sy += pos[i].Y
		}
		// One chunk per worker; the chunk index is derived from lo.
		slot := chunkIndex(lo, n, workers)
		sums[2*slot] = sx
		sums[2*slot+1] = sy
	})

	var cx, cy float64
	for i := 0; i < workers; i++ {
		cx += sums[2*i]
		cy += sums[2*i+1]
	}
	cx /= float64(n)
	cy /= float64(n)

	frozen := ecs.TypeOf[Frozen]()
	ecs.NewView3[Position, Velocity, Acceleration](s.state.Registry).
		Without(frozen).
		Each(func(p *Position, v *Velocity, a *Acceleration) {
			a.AX += (cx - p.X) * s.pull
			a.AY += (cy - p.Y) * s.pull
			a.AX -= v.DX * s.damping
			a.AY -= v.DY * s.damping
		})
}

// chunkIndex recovers which of the evenly-partitioned chunks lo starts.
func chunkIndex(lo, n, workers int) int {
	base := n / workers
	rem := n % workers
	wide := rem * (base + 1)
	if lo < wide {
		return lo / (base + 1)
	}
	if base == 0 {
		return rem
	}
	return rem + (lo-wide)/base
}

// BounceSystem reflects particles off the world bounds. Runs in the
// integrate phase, registered after IntegrateSystem, so positions end every
// step inside the world.
type BounceSystem struct {
	state *State
}

func NewBounceSystem(state *State) *BounceSystem {
	return &BounceSystem{state: state}
}

func (s *BounceSystem) Phase() system.Phase { return system.PhaseIntegrate }

func (s *BounceSystem) Update(_ time.Duration) {
	w, h := s.state.WorldWidth, s.state.WorldHeight
	ecs.Each2(s.state.Registry, func(_ ecs.Entity, p *Position, v *Velocity) {
		if p.X < 0 {
			p.X, v.DX = -p.X, math.Abs(v.DX)
		} else if p.X > w {
			p.X, v.DX = 2*w-p.X, -math.Abs(v.DX)
		}
		if p.Y < 0 {
			p.Y, v.DY = -p.Y, math.Abs(v.DY)
		} else if p.Y > h {
			p.Y, v.DY = 2*h-p.Y, -math.Abs(v.DY)
		}
	})
}

// IntegrateSystem advances position and velocity over the moving group's
// prefix, parallelised across the job pool, skipping frozen particles.
// Stride-1 over the packed arrays: the group guarantees pos[i] and vel[i]
// belong to the same entity.
type IntegrateSystem struct {
	state *State
}

func NewIntegrateSystem(state *State) *IntegrateSystem {
	return &IntegrateSystem{state: state}
}

func (s *IntegrateSystem) Phase() system.Phase { return system.PhaseIntegrate }

func (s *IntegrateSystem) Update(dt time.Duration) {
	g := s.state.Moving
	n := g.Size()
	if n == 0 {
		return
	}
	step := dt.Seconds()

	pos := s.state.positions.Raw()
	vel := s.state.velocities.Raw()
	accel := s.state.accels

	entities := s.state.positions.Entities()
	frozen := ecs.PoolOf[Frozen](s.state.Registry)
	jobs.ParallelForChunk(s.state.Jobs, 0, n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if frozen.Contains(entities[i]) {
				continue
			}
			if a, ok := accel.TryGet(entities[i]); ok {
				vel[i].DX += a.AX * step
				vel[i].DY += a.AY * step
				a.AX, a.AY = 0, 0
			}
			pos[i].X += vel[i].DX * step
			pos[i].Y += vel[i].DY * step
		}
	})
}

// LifetimeSystem expires particles and queues them for destruction.
type LifetimeSystem struct {
	state *State
}

func NewLifetimeSystem(state *State) *LifetimeSystem {
	return &LifetimeSystem{state: state}
}

func (s *LifetimeSystem) Phase() system.Phase { return system.PhaseCleanup }

func (s *LifetimeSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	bus := s.state.Bus
	ecs.EachEntity(s.state.Registry, func(e ecs.Entity, lt *Lifetime) {
		if lt.Immortal {
			return
		}
		lt.Remaining -= step
		if lt.Remaining <= 0 {
			event.Emit(bus, Expired{Entity: e})
			s.state.QueueDestroy(e)
		}
	})
}

// CleanupSystem destroys queued entities at the end of the step. Register
// it after LifetimeSystem.
type CleanupSystem struct {
	state *State
}

func NewCleanupSystem(state *State) *CleanupSystem {
	return &CleanupSystem{state: state}
}

func (s *CleanupSystem) Phase() system.Phase { return system.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.state.FlushDestroyQueue()
}
