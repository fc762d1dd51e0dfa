// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package wm

import (
	"github.com/cap153/rrwm/geom"
	"github.com/cap153/rrwm/transport"
)

// newTiledFixture builds a State with one monitor and the given tiled
// windows left-to-right in a single tag, for focus/move tests.
func newTiledFixture(monitorName string, area geom.Rect, ids ...transport.WindowID) *State {
	s := NewState()
	s.Monitors.SetFullArea(monitorName, area)
	s.FocusedMonitor = monitorName
	s.Seat = 1

	var root *TreeNode
	for i, id := range ids {
		w := s.Windows.Register(id)
		w.Monitor = monitorName
		w.AppID = "test-app"
		w.TagMask = 1
		if i == 0 {
			root = NewLeaf(id)
			continue
		}
		root = WrapRoot(root, id, SplitV, false)
	}
	s.SetTree(TreeKey{Monitor: monitorName, Tag: 1}, root)

	if len(ids) > 0 {
		s.RecordFocus(monitorName, 1, ids[0])
	}
	return s
}
