package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Emitter defines one spawn batch loaded from the scenario file.
type Emitter struct {
	Name     string  `yaml:"name"`
	Count    int     `yaml:"count"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	SpreadX  float64 `yaml:"spread_x"`
	SpreadY  float64 `yaml:"spread_y"`
	SpeedMin float64 `yaml:"speed_min"`
	SpeedMax float64 `yaml:"speed_max"`
	Lifetime float64 `yaml:"lifetime"` // seconds, 0 = immortal
	Frozen   bool    `yaml:"frozen"`
}

// Scenario is the spawn table for one run.
type Scenario struct {
	Emitters []Emitter `yaml:"emitters"`
}

type scenarioFile struct {
	Emitters []Emitter `yaml:"emitters"`
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	for i, em := range f.Emitters {
		if em.Count < 0 {
			return nil, fmt.Errorf("scenario %s: emitter %d (%s) has negative count", path, i, em.Name)
		}
		if em.SpeedMax < em.SpeedMin {
			return nil, fmt.Errorf("scenario %s: emitter %d (%s) has speed_max < speed_min", path, i, em.Name)
		}
	}
	return &Scenario{Emitters: f.Emitters}, nil
}

// Total returns the number of particles the scenario spawns.
func (s *Scenario) Total() int {
	total := 0
	for _, em := range s.Emitters {
		total += em.Count
	}
	return total
}
