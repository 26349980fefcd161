package model

import (
	"sync"
	"time"
)

// Field names a VehicleState attribute changed by a setter.
type Field string

const (
	FieldSpeed     Field = "speed"
	FieldActive    Field = "active"
	FieldLatitude  Field = "latitude"
	FieldLongitude Field = "longitude"
	FieldColor     Field = "color"
)

// VehicleSnapshot is a copy of the vehicle state at one point in time.
type VehicleSnapshot struct {
	Speed     float64 `json:"speed"`
	Active    bool    `json:"active"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Color     Color   `json:"color"`
}

// StateChange describes one setter invocation.
type StateChange struct {
	Field    Field
	Snapshot VehicleSnapshot
	Time     time.Time
}

// VehicleState is the consumer side vehicle model. It is mutated only through
// its setters and is safe for concurrent use.
type VehicleState struct {
	mu   sync.RWMutex
	snap VehicleSnapshot

	notify func(StateChange)
}

// NewVehicleState returns an inactive, stopped vehicle without a marker color.
// notify, when non-nil, is called after every setter with the new state.
func NewVehicleState(notify func(StateChange)) *VehicleState {
	return &VehicleState{snap: VehicleSnapshot{Color: ColorNone}, notify: notify}
}

// SetSpeed sets the speed in km/h. Negative values are stored as zero.
func (v *VehicleState) SetSpeed(kmh float64) {
	if kmh < 0 {
		kmh = 0
	}
	v.update(FieldSpeed, func(s *VehicleSnapshot) { s.Speed = kmh })
}

func (v *VehicleState) SetActiveStatus(active bool) {
	v.update(FieldActive, func(s *VehicleSnapshot) { s.Active = active })
}

func (v *VehicleState) SetLatitude(lat float64) {
	v.update(FieldLatitude, func(s *VehicleSnapshot) { s.Latitude = lat })
}

func (v *VehicleState) SetLongitude(lon float64) {
	v.update(FieldLongitude, func(s *VehicleSnapshot) { s.Longitude = lon })
}

func (v *VehicleState) SetColor(c Color) {
	v.update(FieldColor, func(s *VehicleSnapshot) { s.Color = c })
}

// Snapshot returns a copy of the current state.
func (v *VehicleState) Snapshot() VehicleSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snap
}

func (v *VehicleState) update(f Field, apply func(*VehicleSnapshot)) {
	v.mu.Lock()
	apply(&v.snap)
	snap := v.snap
	v.mu.Unlock()
	if v.notify != nil {
		v.notify(StateChange{Field: f, Snapshot: snap, Time: time.Now()})
	}
}
