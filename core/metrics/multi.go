package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMessage forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordMessage(ev MessageEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordMessage(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordVehicleState forwards vehicle snapshots to sinks that support them.
func (m *MultiSink) RecordVehicleState(ev VehicleStateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(VehicleStateRecorder); ok {
			if err := rec.RecordVehicleState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRouteTick forwards route ticks to sinks that support them.
func (m *MultiSink) RecordRouteTick(ev RouteTickEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RouteTickRecorder); ok {
			if err := rec.RecordRouteTick(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
