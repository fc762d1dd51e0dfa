// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: wm/monitor.go
// Summary: Monitor registry (C2): named outputs, usable vs full rectangles,
// per-monitor active tag.

package wm

import (
	"github.com/cap153/rrwm/geom"
	"github.com/cap153/rrwm/transport"
	"github.com/google/uuid"
)

// Monitor is a single compositor output, keyed by its stable reported name.
type Monitor struct {
	Name       string
	OutputID   transport.OutputID
	FullArea   geom.Rect
	UsableArea geom.Rect
	ActiveTag  uint32

	// MirrorGroup links monitors whose active_tag stays synchronized while
	// their layouts remain independent (DESIGN.md Open Question #3:
	// "mirror" keeps the layout per-output but syncs the tag view).
	// Empty means unlinked.
	MirrorGroup string

	// margins holds the bar padding last applied to this monitor, so a
	// subsequent full_area change can recompute usable_area without
	// losing the reservation (spec.md §4.2 rule).
	marginL, marginT, marginR, marginB int
}

// MonitorRegistry is the flat table of known monitors.
type MonitorRegistry struct {
	monitors map[string]*Monitor
	order    []string // head-enumeration order, for startup-focus resolution

	// pending holds bar-reservation events that arrived before any
	// matching monitor existed, keyed by an opaque placeholder id
	// (google/uuid, see SPEC_FULL.md §C) so multiple queued reservations
	// never collide.
	pending map[uuid.UUID]transport.BarReservation
}

// NewMonitorRegistry returns an empty registry.
func NewMonitorRegistry() *MonitorRegistry {
	return &MonitorRegistry{
		monitors: make(map[string]*Monitor),
		pending:  make(map[uuid.UUID]transport.BarReservation),
	}
}

// Register is idempotent: it initializes active_tag=1 and zero rectangles
// until a subsequent configurator pass (spec.md §4.2).
func (r *MonitorRegistry) Register(name string) *Monitor {
	if m, ok := r.monitors[name]; ok {
		return m
	}
	m := &Monitor{Name: name, ActiveTag: 1}
	r.monitors[name] = m
	r.order = append(r.order, name)
	return m
}

// Get looks up a monitor by name.
func (r *MonitorRegistry) Get(name string) (*Monitor, bool) {
	m, ok := r.monitors[name]
	return m, ok
}

// Order returns monitor names in head-enumeration (registration) order.
func (r *MonitorRegistry) Order() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every monitor, in registration order.
func (r *MonitorRegistry) All() []*Monitor {
	out := make([]*Monitor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.monitors[name])
	}
	return out
}

// Remove destroys a monitor on an output-removal event.
func (r *MonitorRegistry) Remove(name string) {
	delete(r.monitors, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// SetFullArea applies a new full_area (from the output configurator, C9)
// and recomputes usable_area by re-applying the previously configured bar
// padding, per spec.md §4.2. Any pending bar reservation whose center now
// falls inside the new full_area is applied and dequeued.
func (r *MonitorRegistry) SetFullArea(name string, full geom.Rect) *Monitor {
	m := r.Register(name)
	m.FullArea = full
	m.UsableArea = full.Inset(m.marginL, m.marginT, m.marginR, m.marginB)

	for id, res := range r.pending {
		center := geom.Point{X: res.CenterX, Y: res.CenterY}
		if m.FullArea.Contains(center) {
			r.applyReservation(m, res)
			delete(r.pending, id)
		}
	}
	return m
}

// SetUsable applies a bar-reservation event (spec.md §4.2): matched to a
// monitor by testing whether the reservation center lies inside that
// monitor's full_area. If no monitor matches yet, it is queued against an
// anonymous placeholder.
func (r *MonitorRegistry) SetUsable(res transport.BarReservation) bool {
	center := geom.Point{X: res.CenterX, Y: res.CenterY}
	for _, name := range r.order {
		m := r.monitors[name]
		if m.FullArea.Contains(center) {
			r.applyReservation(m, res)
			return true
		}
	}
	r.pending[uuid.New()] = res
	return false
}

func (r *MonitorRegistry) applyReservation(m *Monitor, res transport.BarReservation) {
	m.marginL, m.marginT, m.marginR, m.marginB = res.Left, res.Top, res.Right, res.Bottom
	m.UsableArea = m.FullArea.Inset(res.Left, res.Top, res.Right, res.Bottom)
}

// SetOutputID records the compositor-assigned opaque output id for a
// monitor, learned from the output configurator's head-enumeration
// events (spec.md §4.9).
func (r *MonitorRegistry) SetOutputID(name string, id transport.OutputID) {
	if m, ok := r.monitors[name]; ok {
		m.OutputID = id
	}
}

// SetMirrorGroup links name into a tag-sync group shared by every other
// monitor carrying the same group id (spec.md §4.9 "mirror").
func (r *MonitorRegistry) SetMirrorGroup(name, group string) {
	if m, ok := r.monitors[name]; ok {
		m.MirrorGroup = group
	}
}

// SetActiveTag sets the one-hot active-tag mask for a monitor. If the
// monitor belongs to a mirror group, every other member's active_tag is
// synchronized too, while each keeps its own independent layout.
func (r *MonitorRegistry) SetActiveTag(name string, tag uint32) {
	m, ok := r.monitors[name]
	if !ok {
		return
	}
	m.ActiveTag = tag
	if m.MirrorGroup == "" {
		return
	}
	for _, other := range r.monitors {
		if other.Name != name && other.MirrorGroup == m.MirrorGroup {
			other.ActiveTag = tag
		}
	}
}

// MonitorAt returns the monitor whose full_area contains p, if any.
func (r *MonitorRegistry) MonitorAt(p geom.Point) (*Monitor, bool) {
	for _, name := range r.order {
		m := r.monitors[name]
		if m.FullArea.Contains(p) {
			return m, true
		}
	}
	return nil, false
}
