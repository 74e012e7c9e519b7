package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorded struct {
	name  string
	phase Phase
	log   *[]string
}

func (s *recorded) Phase() Phase { return s.phase }

func (s *recorded) Update(time.Duration) {
	*s.log = append(*s.log, s.name)
}

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorded{name: "cleanup", phase: PhaseCleanup, log: &log})
	r.Register(&recorded{name: "spawn", phase: PhaseSpawn, log: &log})
	r.Register(&recorded{name: "update", phase: PhaseUpdate, log: &log})

	r.Step(time.Millisecond)
	assert.Equal(t, []string{"spawn", "update", "cleanup"}, log)
}

func TestRunnerKeepsRegistrationOrderWithinPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorded{name: "first", phase: PhaseUpdate, log: &log})
	r.Register(&recorded{name: "second", phase: PhaseUpdate, log: &log})

	r.Step(time.Millisecond)
	r.Step(time.Millisecond)
	assert.Equal(t, []string{"first", "second", "first", "second"}, log)
}

func TestRunnerStepPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorded{name: "spawn", phase: PhaseSpawn, log: &log})
	r.Register(&recorded{name: "update", phase: PhaseUpdate, log: &log})

	r.StepPhase(PhaseSpawn, time.Millisecond)
	assert.Equal(t, []string{"spawn"}, log)
}

func TestRunnerLateRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorded{name: "update", phase: PhaseUpdate, log: &log})
	r.Step(time.Millisecond)

	r.Register(&recorded{name: "spawn", phase: PhaseSpawn, log: &log})
	r.Step(time.Millisecond)

	assert.Equal(t, []string{"update", "spawn", "update"}, log)
}
