package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/v2xlab/obu/core/control"
	"github.com/v2xlab/obu/core/model"
)

// Step is one scenario action. Exactly one field is expected to be set.
type Step struct {
	// Command is handed to the producer.
	Command *control.Command `yaml:"command,omitempty"`
	// Ticks advances the route runner that many times.
	Ticks int `yaml:"ticks,omitempty"`
	// Raw is delivered to the consumer as is, bypassing the producer.
	Raw *RawMessage `yaml:"raw,omitempty"`
}

// RawMessage is a payload for <prefix>/<kind>.
type RawMessage struct {
	Kind    model.TopicKind `yaml:"kind"`
	Payload string          `yaml:"payload"`
}

type Expected struct {
	// Cursor is the route cursor after the last step; nil means no session.
	Cursor    *int                  `yaml:"cursor"`
	Published int                   `yaml:"published"`
	Vehicle   model.VehicleSnapshot `yaml:"vehicle"`
}

type Scenario struct {
	Name        string                      `yaml:"name"`
	Description string                      `yaml:"description,omitempty"`
	Routes      map[string][]model.Waypoint `yaml:"routes,omitempty"`
	Steps       []Step                      `yaml:"steps"`
	Expected    Expected                    `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
