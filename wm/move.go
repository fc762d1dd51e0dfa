// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: wm/move.go
// Summary: Move engine (C5): in-tag directional move, cross-tag
// re-insertion with a hint, cross-monitor re-insertion.

package wm

import "github.com/cap153/rrwm/transport"

// InsertHint picks the wrap shape used by move_to_tag/move_to_output
// (spec.md §4.5) whenever the destination tree is non-empty: the moved
// window and the whole existing tree become the two halves of a new root.
type InsertHint int

const (
	HintLeftmost InsertHint = iota
	HintRightmost
	HintTopmost
	HintBottommost
)

// split reports the wrap split orientation for a hint.
func (h InsertHint) split() Split {
	if h == HintTopmost || h == HintBottommost {
		return SplitH
	}
	return SplitV
}

// newFirst reports whether the new window becomes the first (left/top)
// child of the wrap container.
func (h InsertHint) newFirst() bool {
	return h == HintLeftmost || h == HintTopmost
}

// oppositeEdgeHint maps a motion direction to the hint naming the
// opposite edge, per spec.md §4.5's example ("Right at right boundary →
// move to next tag, land Leftmost").
func oppositeEdgeHint(dir Direction) InsertHint {
	switch dir {
	case DirRight:
		return HintLeftmost
	case DirLeft:
		return HintRightmost
	case DirDown:
		return HintTopmost
	default: // DirUp
		return HintBottommost
	}
}

// MoveDirectional implements spec.md §4.5's in-tag move: swap with a
// geometric neighbor if one exists, else treat the motion as a boundary
// crossing into the adjacent tag.
func (s *State) MoveDirectional(dir Direction) {
	s.LastDir = dir
	cur, ok := s.Windows.Get(s.FocusedWindow)
	if !ok || cur.IsFloat {
		return
	}
	mon, ok := s.Monitors.Get(cur.Monitor)
	if !ok {
		return
	}

	if other, ok := s.findDirectionalNeighbor(mon, cur, dir); ok {
		tree := s.Tree(TreeKey{Monitor: mon.Name, Tag: mon.ActiveTag})
		SwapWindows(tree, cur.ID, other)
		s.MarkDirty()
		return
	}

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

	s.MoveToTag(cur.ID, 1<<uint(newIdx), false, oppositeEdgeHint(dir))
}

// MoveToTag implements spec.md §4.5's move_to_tag.
func (s *State) MoveToTag(window transport.WindowID, targetMask uint32, follow bool, hint InsertHint) {
	w, ok := s.Windows.Get(window)
	if !ok {
		return
	}
	mon, ok := s.Monitors.Get(w.Monitor)
	if !ok {
		return
	}
	oldTag := w.TagMask
	oldKey := TreeKey{Monitor: mon.Name, Tag: oldTag}
	newKey := TreeKey{Monitor: mon.Name, Tag: targetMask}

	s.SetTree(oldKey, RemoveAt(s.Tree(oldKey), window))
	w.TagMask = targetMask
	s.insertWithHint(newKey, window, hint)

	if s.History[oldKey] == window {
		if leaves := Leaves(s.Tree(oldKey)); len(leaves) > 0 {
			s.History[oldKey] = leaves[0]
		} else {
			delete(s.History, oldKey)
		}
	}
	s.History[newKey] = window

	if follow {
		s.Monitors.SetActiveTag(mon.Name, targetMask)
		s.FocusedWindow = window
		s.FocusedMonitor = mon.Name
		s.SyncFocusedTagShadow()
	}
	s.MarkDirty()
}

// MoveToOutput implements spec.md §4.5's move_to_output: analogous to
// move_to_tag, but the destination key is the next monitor's active tag,
// and a pointer warp to the destination's center is queued.
func (s *State) MoveToOutput(window transport.WindowID, dir Direction) {
	w, ok := s.Windows.Get(window)
	if !ok {
		return
	}
	mon, ok := s.Monitors.Get(w.Monitor)
	if !ok {
		return
	}

	monitors := s.Monitors.All()
	curIdx := 0
	for i, m := range monitors {
		if m.Name == mon.Name {
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
	if dest.Name == mon.Name {
		return
	}

	oldKey := TreeKey{Monitor: mon.Name, Tag: w.TagMask}
	newKey := TreeKey{Monitor: dest.Name, Tag: dest.ActiveTag}

	s.SetTree(oldKey, RemoveAt(s.Tree(oldKey), window))
	w.Monitor = dest.Name
	w.TagMask = dest.ActiveTag
	s.insertWithHint(newKey, window, oppositeEdgeHint(dir))

	if s.History[oldKey] == window {
		if leaves := Leaves(s.Tree(oldKey)); len(leaves) > 0 {
			s.History[oldKey] = leaves[0]
		} else {
			delete(s.History, oldKey)
		}
	}
	s.History[newKey] = window

	s.QueueWarpToRect(dest.UsableArea)
	s.MarkDirty()
}

// insertWithHint inserts window into the tree at key by wrapping the
// whole destination tree per hint (spec.md §4.5 step 3: Leftmost/Topmost
// puts the new window first, Rightmost/Bottommost puts it last).
func (s *State) insertWithHint(key TreeKey, window transport.WindowID, hint InsertHint) {
	tree := s.Tree(key)
	if tree == nil {
		s.SetTree(key, NewLeaf(window))
		return
	}
	s.SetTree(key, WrapRoot(tree, window, hint.split(), hint.newFirst()))
}
