// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: wm/state.go
// Summary: The single global-state object (spec.md §9 "Single global-state
// object"). Every handler takes it by pointer receiver and runs to
// completion before another handler is dispatched (spec.md §5); there is
// no internal locking.

package wm

import (
	"github.com/cap153/rrwm/geom"
	"github.com/cap153/rrwm/transport"
)

// TreeKey addresses a BSP tree by (monitor, tag) — spec.md §3 "Tree
// index".
type TreeKey struct {
	Monitor string
	Tag     uint32
}

// PointerWarp is a queued seat pointer-warp request (spec.md §4.4, §4.5),
// materialized during the next manage/render transaction.
type PointerWarp struct {
	Seat transport.SeatID
	X, Y int
}

// State is the single owner of all layout/focus state. It is not safe for
// concurrent use — spec.md §5 guarantees exactly one handler runs at a
// time.
type State struct {
	Monitors *MonitorRegistry
	Windows  *WindowRegistry

	// Trees is keyed by (monitor_name, tag_mask); a missing key means an
	// empty tree (spec.md §3).
	Trees map[TreeKey]*TreeNode

	// History is the focus-history index (spec.md §3, §4.4).
	History map[TreeKey]transport.WindowID

	// LastGeometry caches each tiled window's last-emitted content
	// rectangle (spec.md §4.7 step 8; also consulted by the focus engine
	// per §4.4's "last-known geometry").
	LastGeometry map[transport.WindowID]geom.Rect

	// Global focus state (spec.md §3).
	FocusedWindow    transport.WindowID // 0 = unset
	FocusedMonitor   string             // "" = unset
	FocusedTagShadow uint32

	Seat transport.SeatID

	// LastDir is the most recent navigation direction, consulted by focus
	// recovery (spec.md §4.4 fallback chain "(b) a float window chosen by
	// wrap-direction") when manage_start must pick a substitute focus with
	// no directional gesture in flight.
	LastDir Direction

	PendingWarp *PointerWarp

	// Dirty is true when a handler wants a fresh manage_start pass but is
	// not itself inside one (spec.md §9 "Transactional emission": a hint,
	// not a state change).
	Dirty bool

	// lastSentJSON is the broadcast dedupe cache (spec.md §8 law L4);
	// never source-of-truth.
	lastSentJSON string
}

// NewState returns an empty, ready-to-use global state object.
func NewState() *State {
	return &State{
		Monitors: NewMonitorRegistry(),
		Windows:  NewWindowRegistry(),
		Trees:        make(map[TreeKey]*TreeNode),
		History:      make(map[TreeKey]transport.WindowID),
		LastGeometry: make(map[transport.WindowID]geom.Rect),
	}
}

// Tree returns the tree at key, or nil if empty.
func (s *State) Tree(key TreeKey) *TreeNode {
	return s.Trees[key]
}

// SetTree installs (or clears, if root is nil) the tree at key.
func (s *State) SetTree(key TreeKey, root *TreeNode) {
	if root == nil {
		delete(s.Trees, key)
		return
	}
	s.Trees[key] = root
}

// MarkDirty signals that compositor state should be re-synced on the
// next manage_start (spec.md §9).
func (s *State) MarkDirty() {
	s.Dirty = true
}

// QueueWarp queues a pointer warp to be applied on the next transaction.
func (s *State) QueueWarp(x, y int) {
	s.PendingWarp = &PointerWarp{Seat: s.Seat, X: x, Y: y}
}

// QueueWarpToRect queues a warp to r's center.
func (s *State) QueueWarpToRect(r geom.Rect) {
	c := r.Center()
	s.QueueWarp(c.X, c.Y)
}

// RecordFocus updates the focus-history index and the global focus
// pointer together (spec.md §4.4 "Focus-memory rule").
func (s *State) RecordFocus(monitor string, tag uint32, w transport.WindowID) {
	s.History[TreeKey{Monitor: monitor, Tag: tag}] = w
	s.FocusedWindow = w
	s.FocusedMonitor = monitor
}

// SyncFocusedTagShadow mirrors the focused monitor's active_tag, per
// spec.md §3 ("updated only at transaction boundaries").
func (s *State) SyncFocusedTagShadow() {
	if m, ok := s.Monitors.Get(s.FocusedMonitor); ok {
		s.FocusedTagShadow = m.ActiveTag
	}
}
