package config

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTopicPrefix is the prefix of the speed, heartbeat and route topics.
const DefaultTopicPrefix = "v2x/obu"

// TopicConfig holds the topic prefix shared by producer and consumer.
type TopicConfig struct {
	Prefix string `json:"prefix"`
}

func (c *TopicConfig) SetDefaults() {
	if c.Prefix == "" {
		c.Prefix = DefaultTopicPrefix
	}
}

// Validate rejects wildcards, the prefix names concrete topics.
func (c TopicConfig) Validate() error {
	if strings.Trim(c.Prefix, "/") == "" {
		return fmt.Errorf("topic prefix is required")
	}
	if strings.ContainsAny(c.Prefix, "+#") {
		return fmt.Errorf("topic prefix %q must not contain wildcards", c.Prefix)
	}
	return nil
}

// RouteConfig tunes route replay.
type RouteConfig struct {
	// IntervalMS is the time between two route events.
	IntervalMS int `json:"interval_ms"`
	// File optionally adds routes from a YAML or JSON file.
	File string `json:"file"`
}

func (c *RouteConfig) SetDefaults() {
	if c.IntervalMS == 0 {
		c.IntervalMS = 1000
	}
}

func (c RouteConfig) Validate() error {
	if c.IntervalMS < 0 {
		return fmt.Errorf("route interval_ms must not be negative")
	}
	return nil
}

// Interval returns IntervalMS as a duration.
func (c RouteConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}
