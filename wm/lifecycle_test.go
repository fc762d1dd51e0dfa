// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package wm

import (
	"testing"

	"github.com/cap153/rrwm/geom"
)

func TestOnAppIDPromotesToFocusedMonitorTiling(t *testing.T) {
	s := NewState()
	s.Monitors.SetFullArea("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	s.FocusedMonitor = "DP-1"

	s.OnWindow(1)
	s.OnAppID(1, "foot", nil)

	w, _ := s.Windows.Get(1)
	if w.Monitor != "DP-1" || w.TagMask != 1 {
		t.Fatalf("window not promoted correctly: %+v", w)
	}
	tree := s.Tree(TreeKey{Monitor: "DP-1", Tag: 1})
	if tree == nil || !Contains(tree, 1) {
		t.Fatal("expected window inserted into tiling tree")
	}
}

func TestOnAppIDBlacklistedStaysUntiled(t *testing.T) {
	s := NewState()
	s.Monitors.SetFullArea("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	s.FocusedMonitor = "DP-1"

	s.OnWindow(1)
	s.OnAppID(1, "fcitx-panel", nil)

	w, _ := s.Windows.Get(1)
	if w.Monitor != "" {
		t.Fatalf("blacklisted window should stay unplaced, got monitor %q", w.Monitor)
	}
}

func TestOnAppIDAppliesFloatRule(t *testing.T) {
	s := NewState()
	s.Monitors.SetFullArea("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	s.FocusedMonitor = "DP-1"

	rules := []WindowRule{{Match: "pavucontrol", Float: true}}
	s.OnWindow(1)
	s.OnAppID(1, "pavucontrol", rules)

	w, _ := s.Windows.Get(1)
	if !w.IsFloat {
		t.Fatal("expected rule to force floating placement")
	}
	tree := s.Tree(TreeKey{Monitor: "DP-1", Tag: 1})
	if tree != nil && Contains(tree, 1) {
		t.Fatal("floated window should not be inserted into the tiling tree")
	}
}

func TestOnWindowClosedRemovesFromTreeAndHistory(t *testing.T) {
	s := NewState()
	s.Monitors.SetFullArea("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	s.FocusedMonitor = "DP-1"
	s.OnWindow(1)
	s.OnAppID(1, "foot", nil)
	s.FocusedWindow = 1

	s.OnWindowClosed(1)

	if _, ok := s.Windows.Get(1); ok {
		t.Fatal("expected window removed from registry")
	}
	if s.FocusedWindow != 0 {
		t.Fatalf("expected FocusedWindow cleared, got %d", s.FocusedWindow)
	}
	tree := s.Tree(TreeKey{Monitor: "DP-1", Tag: 1})
	if tree != nil {
		t.Fatal("expected tree emptied after closing its only window")
	}
}
