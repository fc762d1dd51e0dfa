// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: wm/focus.go
// Summary: Focus engine (C4): directional neighbor search, wrap policy,
// floating focus, cross-monitor focus, focus-history memory.

package wm

import (
	"sort"

	"github.com/cap153/rrwm/geom"
	"github.com/cap153/rrwm/transport"
)

// geometryFor returns w's last-known rectangle: its float_rect if
// floating (and not fullscreen), else its position in its (monitor,
// active_tag) tree, falling back to a fresh Render when no cached
// geometry exists yet (e.g. before the first manage_start).
func (s *State) geometryFor(mon *Monitor, w *Window) (geom.Rect, bool) {
	if w.IsFloat && !w.IsFullscreen {
		return w.FloatRect, true
	}
	if r, ok := s.LastGeometry[w.ID]; ok {
		return r, true
	}
	tree := s.Tree(TreeKey{Monitor: mon.Name, Tag: mon.ActiveTag})
	for _, lr := range Render(tree, mon.UsableArea) {
		if lr.Window == w.ID {
			return lr.Rect, true
		}
	}
	return geom.Rect{}, false
}

// onDirSide is the half-plane test of spec.md §4.4 step 2: cand must be
// strictly on the dir side of cur, using cur's outgoing edge and cand's
// incoming edge.
func onDirSide(cur, cand geom.Rect, dir Direction) bool {
	switch dir {
	case DirRight:
		return cand.X >= cur.X+cur.W
	case DirLeft:
		return cand.X+cand.W <= cur.X
	case DirUp:
		return cand.Y+cand.H <= cur.Y
	default: // DirDown
		return cand.Y >= cur.Y+cur.H
	}
}

// distanceAlong measures the gap between cur's outgoing edge and cand's
// incoming edge along dir (spec.md §4.4 step 3).
func distanceAlong(cur, cand geom.Rect, dir Direction) float64 {
	switch dir {
	case DirRight:
		return float64(cand.X - (cur.X + cur.W))
	case DirLeft:
		return float64(cur.X - (cand.X + cand.W))
	case DirUp:
		return float64(cur.Y - (cand.Y + cand.H))
	default: // DirDown
		return float64(cand.Y - (cur.Y + cur.H))
	}
}

// DirectionalFocus implements spec.md §4.4's directional neighbor search
// plus wrap policy plus the floating-focus branch. It returns the window
// that should now be focused (if any) and records it into history.
func (s *State) DirectionalFocus(dir Direction) (transport.WindowID, bool) {
	s.LastDir = dir
	cur, ok := s.Windows.Get(s.FocusedWindow)
	if !ok {
		return 0, false
	}
	mon, ok := s.Monitors.Get(cur.Monitor)
	if !ok {
		return 0, false
	}

	if cur.IsFloat && !cur.IsFullscreen {
		return s.floatingDirectionalFocus(mon, cur, dir)
	}

	if best, ok := s.findDirectionalNeighbor(mon, cur, dir); ok {
		s.RecordFocus(mon.Name, mon.ActiveTag, best)
		return best, true
	}

	// Wrap policy (spec.md §4.4).
	if dir == DirLeft || dir == DirRight {
		s.cycleTag(mon, dir)
		return s.FocusedWindow, s.FocusedWindow != 0
	}
	return 0, false
}

// findDirectionalNeighbor is the geometric neighbor search shared by
// DirectionalFocus (spec.md §4.4 steps 1-3) and the move engine's in-tag
// move (spec.md §4.5).
func (s *State) findDirectionalNeighbor(mon *Monitor, cur *Window, dir Direction) (transport.WindowID, bool) {
	curRect, ok := s.geometryFor(mon, cur)
	if !ok {
		return 0, false
	}

	type candidate struct {
		id    transport.WindowID
		score float64
	}
	var best *candidate
	for _, cw := range s.Windows.OnMonitorTag(mon.Name, mon.ActiveTag) {
		if cw.ID == cur.ID {
			continue
		}
		r, ok := s.geometryFor(mon, cw)
		if !ok || !onDirSide(curRect, r, dir) {
			continue
		}
		score := distanceAlong(curRect, r, dir)
		if curRect.IntersectsOrthogonal(r, dir.Horizontal()) {
			score -= 1000
		}
		if best == nil || score < best.score || (score == best.score && cw.ID < best.id) {
			best = &candidate{id: cw.ID, score: score}
		}
	}
	if best == nil {
		return 0, false
	}
	return best.id, true
}

// cycleTag implements spec.md §4.4's wrap policy for DirLeft/DirRight:
// move active_tag by one index on the monitor's occupancy axis, with a
// dynamic upper bound of min(31, max_occupied_index+1), wrapping 0→bound
// on Left and bound→0 on Right. After switching, focus locks to the
// destination tree's edge window opposite dir (law L3).
func (s *State) cycleTag(mon *Monitor, dir Direction) {
	curIdx := TagIndex(mon.ActiveTag)
	if curIdx < 0 {
		curIdx = 0
	}
	occ := s.Windows.OccupiedTagsOn(mon.Name)
	bound := MaxOccupiedIndex(occ) + 1
	if bound > 31 {
		bound = 31
	}

	var newIdx int
	switch dir {
	case DirRight:
		if curIdx >= bound {
			newIdx = 0
		} else {
			newIdx = curIdx + 1
		}
	case DirLeft:
		if curIdx <= 0 {
			newIdx = bound
		} else {
			newIdx = curIdx - 1
		}
	default:
		return
	}

	s.Monitors.SetActiveTag(mon.Name, 1<<uint(newIdx))
	key := TreeKey{Monitor: mon.Name, Tag: mon.ActiveTag}
	if id, ok := FindEdge(s.Tree(key), dir.Opposite()); ok {
		s.RecordFocus(mon.Name, mon.ActiveTag, id)
	} else {
		s.FocusedWindow = 0
		s.FocusedMonitor = mon.Name
	}
}

// floatingDirectionalFocus implements spec.md §4.4's "Floating focus"
// paragraph.
func (s *State) floatingDirectionalFocus(mon *Monitor, cur *Window, dir Direction) (transport.WindowID, bool) {
	var floats []*Window
	for _, w := range s.Windows.OnMonitorTag(mon.Name, mon.ActiveTag) {
		if w.IsFloat && !w.IsFullscreen {
			floats = append(floats, w)
		}
	}
	if len(floats) <= 1 {
		if dir == DirLeft || dir == DirRight {
			s.cycleTag(mon, dir)
			return s.FocusedWindow, s.FocusedWindow != 0
		}
		return 0, false
	}

	sortFloatsFor(floats, dir)

	idx := -1
	for i, w := range floats {
		if w.ID == cur.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false
	}

	var next int
	if dir == DirLeft || dir == DirUp {
		next = idx - 1
		if next < 0 {
			next = len(floats) - 1
		}
	} else {
		next = idx + 1
		if next >= len(floats) {
			next = 0
		}
	}

	target := floats[next]
	s.RecordFocus(mon.Name, mon.ActiveTag, target.ID)
	return target.ID, true
}

// sortFloatsFor sorts by (x then y) for L/R, (y then x) for U/D, ties by
// id (spec.md §4.4 step 3 of "Floating focus").
func sortFloatsFor(floats []*Window, dir Direction) {
	sort.Slice(floats, func(i, j int) bool {
		a, b := floats[i], floats[j]
		if dir.Horizontal() {
			if a.FloatRect.X != b.FloatRect.X {
				return a.FloatRect.X < b.FloatRect.X
			}
			if a.FloatRect.Y != b.FloatRect.Y {
				return a.FloatRect.Y < b.FloatRect.Y
			}
		} else {
			if a.FloatRect.Y != b.FloatRect.Y {
				return a.FloatRect.Y < b.FloatRect.Y
			}
			if a.FloatRect.X != b.FloatRect.X {
				return a.FloatRect.X < b.FloatRect.X
			}
		}
		return a.ID < b.ID
	})
}

// geometryFromTree looks up id's rendered rectangle within tree over r.
func geometryFromTree(tree *TreeNode, r geom.Rect, id transport.WindowID) (geom.Rect, bool) {
	for _, lr := range Render(tree, r) {
		if lr.Window == id {
			return lr.Rect, true
		}
	}
	return geom.Rect{}, false
}

// FocusOutput implements spec.md §4.4's focus_output(dir): sort monitors
// by usable_area.x (L/R) or .y (U/D), advance circularly, land on the
// destination's edge window opposite dir, and queue a pointer warp.
func (s *State) FocusOutput(dir Direction) {
	s.LastDir = dir
	monitors := s.Monitors.All()
	if len(monitors) == 0 {
		return
	}
	sort.Slice(monitors, func(i, j int) bool {
		if dir.Horizontal() {
			return monitors[i].UsableArea.X < monitors[j].UsableArea.X
		}
		return monitors[i].UsableArea.Y < monitors[j].UsableArea.Y
	})

	curIdx := 0
	for i, m := range monitors {
		if m.Name == s.FocusedMonitor {
			curIdx = i
			break
		}
	}
	var nextIdx int
	if dir == DirRight || dir == DirDown {
		nextIdx = (curIdx + 1) % len(monitors)
	} else {
		nextIdx = (curIdx - 1 + len(monitors)) % len(monitors)
	}
	dest := monitors[nextIdx]

	key := TreeKey{Monitor: dest.Name, Tag: dest.ActiveTag}
	tree := s.Tree(key)
	if id, ok := FindEdge(tree, dir.Opposite()); ok {
		s.RecordFocus(dest.Name, dest.ActiveTag, id)
		if r, ok2 := geometryFromTree(tree, dest.UsableArea, id); ok2 {
			s.QueueWarpToRect(r)
		} else {
			s.QueueWarpToRect(dest.UsableArea)
		}
	} else {
		s.FocusedWindow = 0
		s.FocusedMonitor = dest.Name
		s.QueueWarpToRect(dest.UsableArea)
	}
	s.SyncFocusedTagShadow()
}

// FocusTag switches the focused monitor's active_tag to an explicit
// mask (spec.md §4.8's numeric focus arg: FocusTag(1 << (N-1))),
// restoring focus from history, else the tree's rightmost edge, else
// none.
func (s *State) FocusTag(tag uint32) {
	mon, ok := s.Monitors.Get(s.FocusedMonitor)
	if !ok {
		return
	}
	s.Monitors.SetActiveTag(mon.Name, tag)
	key := TreeKey{Monitor: mon.Name, Tag: tag}

	if hist, ok := s.History[key]; ok {
		if w, ok2 := s.Windows.Get(hist); ok2 && w.TagMask&tag != 0 {
			s.RecordFocus(mon.Name, tag, hist)
			return
		}
	}
	if id, ok := FindEdge(s.Tree(key), DirRight); ok {
		s.RecordFocus(mon.Name, tag, id)
		return
	}
	s.FocusedWindow = 0
}

// RecoverFocus implements spec.md §4.4's focus-memory fallback chain,
// invoked from manage_start (§4.7 step 4) when the current focus is
// invisible: restore from history, else (a) any tiled window on the
// monitor/tag, else (b) a float window chosen by wrap-direction.
func (s *State) RecoverFocus(hintDir Direction) {
	if s.visible(s.FocusedWindow) {
		return
	}
	mon, ok := s.Monitors.Get(s.FocusedMonitor)
	if !ok {
		s.FocusedWindow = 0
		return
	}
	key := TreeKey{Monitor: mon.Name, Tag: mon.ActiveTag}

	if hist, ok := s.History[key]; ok {
		if w, ok2 := s.Windows.Get(hist); ok2 && w.Monitor == mon.Name && w.TagMask&mon.ActiveTag != 0 {
			s.FocusedWindow = hist
			return
		}
	}

	if id, ok := FindEdge(s.Tree(key), hintDir.Opposite()); ok {
		s.FocusedWindow = id
		return
	}

	var floats []*Window
	for _, w := range s.Windows.OnMonitorTag(mon.Name, mon.ActiveTag) {
		if w.IsFloat && !w.IsFullscreen {
			floats = append(floats, w)
		}
	}
	if len(floats) > 0 {
		sortFloatsFor(floats, hintDir)
		s.FocusedWindow = floats[0].ID
		return
	}

	s.FocusedWindow = 0
}

// visible reports whether window w is currently shown on its monitor's
// active tag (spec.md §8 invariant I4).
func (s *State) visible(w transport.WindowID) bool {
	if w == 0 {
		return false
	}
	win, ok := s.Windows.Get(w)
	if !ok {
		return false
	}
	mon, ok := s.Monitors.Get(win.Monitor)
	if !ok || mon.Name != s.FocusedMonitor {
		return false
	}
	return win.TagMask&mon.ActiveTag != 0
}
