// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: wm/float.go
// Summary: Float/fullscreen layer (C6): cascade placement, tile↔float
// toggles, fullscreen intent. Materializing fullscreen intent into
// compositor requests belongs to the reconciler (C7); this file only
// owns the intent flag and the tree membership transition.

package wm

import (
	"math"

	"github.com/cap153/rrwm/geom"
	"github.com/cap153/rrwm/transport"
)

const (
	floatCascadeSlots  = 10
	floatCascadeStep   = 25
	floatCollideRadius = 5
)

// ToggleToFloat implements spec.md §4.6's tile→float transition.
func (s *State) ToggleToFloat(id transport.WindowID) {
	w, ok := s.Windows.Get(id)
	if !ok || w.IsFloat {
		return
	}
	mon, ok := s.Monitors.Get(w.Monitor)
	if !ok {
		return
	}
	key := TreeKey{Monitor: mon.Name, Tag: w.TagMask}
	s.SetTree(key, RemoveAt(s.Tree(key), id))
	w.IsFloat = true
	w.FloatRect = s.cascadeFloatRect(mon, w.TagMask)
	s.MarkDirty()
}

// cascadeFloatRect implements spec.md §4.6's cascade placement: centered
// at 60%×60% of usable_area, walking slots 0..10 offset by (slot·25,
// slot·25), accepting the first slot not within 5px of any existing
// float window on the same (monitor, tag).
func (s *State) cascadeFloatRect(mon *Monitor, tagMask uint32) geom.Rect {
	area := mon.UsableArea
	w := int(float64(area.W) * 0.6)
	h := int(float64(area.H) * 0.6)
	baseX := area.X + (area.W-w)/2
	baseY := area.Y + (area.H-h)/2

	var existing []geom.Rect
	for _, ow := range s.Windows.OnMonitorTag(mon.Name, tagMask) {
		if ow.IsFloat {
			existing = append(existing, ow.FloatRect)
		}
	}

	var candidate geom.Rect
	for slot := 0; slot < floatCascadeSlots; slot++ {
		candidate = geom.Rect{X: baseX + slot*floatCascadeStep, Y: baseY + slot*floatCascadeStep, W: w, H: h}
		if !collidesWithAny(candidate, existing) {
			return candidate
		}
	}
	return candidate
}

func collidesWithAny(r geom.Rect, existing []geom.Rect) bool {
	for _, o := range existing {
		if math.Abs(float64(r.X-o.X)) <= floatCollideRadius && math.Abs(float64(r.Y-o.Y)) <= floatCollideRadius {
			return true
		}
	}
	return false
}

// ToggleToTile implements spec.md §4.6's float→tile transition.
func (s *State) ToggleToTile(id transport.WindowID) {
	w, ok := s.Windows.Get(id)
	if !ok || !w.IsFloat {
		return
	}
	mon, ok := s.Monitors.Get(w.Monitor)
	if !ok {
		return
	}
	w.IsFloat = false
	key := TreeKey{Monitor: mon.Name, Tag: w.TagMask}
	s.insertIntoTree(key, id)
	s.MarkDirty()
}

// insertIntoTree implements spec.md §4.6's float→tile insertion shape,
// shared with the window-creation path in lifecycle.go: insert at the
// tag's history target if one is live in the tree, else wrap the root.
func (s *State) insertIntoTree(key TreeKey, id transport.WindowID) {
	oldRoot := s.Tree(key)
	if oldRoot == nil {
		s.SetTree(key, NewLeaf(id))
		return
	}
	if target, ok := s.History[key]; ok && Contains(oldRoot, target) {
		if newTree, ok2 := InsertAt(oldRoot, target, id, SplitV); ok2 {
			s.SetTree(key, newTree)
			return
		}
	}
	s.SetTree(key, WrapRoot(oldRoot, id, SplitV, false))
}

// SetFullscreen stores fullscreen intent on a window (spec.md §4.6). The
// reconciler materializes it at the next manage_start.
func (s *State) SetFullscreen(id transport.WindowID, on bool) {
	w, ok := s.Windows.Get(id)
	if !ok {
		return
	}
	w.IsFullscreen = on
	s.MarkDirty()
}

// FullscreenTargetOutput resolves the output a fullscreen window should
// materialize against: the monitor whose full_area origin matches the
// window's own monitor (spec.md §4.6).
func (s *State) FullscreenTargetOutput(w *Window) (*Monitor, bool) {
	mon, ok := s.Monitors.Get(w.Monitor)
	if !ok {
		return nil, false
	}
	for _, m := range s.Monitors.All() {
		if m.FullArea.X == mon.FullArea.X && m.FullArea.Y == mon.FullArea.Y {
			return m, true
		}
	}
	return mon, true
}
