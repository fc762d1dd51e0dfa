// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package wm

import (
	"testing"

	"github.com/cap153/rrwm/geom"
	"github.com/cap153/rrwm/transport"
)

// fakeRequester records every call made against it, for asserting
// transaction shape without a real compositor connection.
type fakeRequester struct {
	nodes       map[transport.WindowID]transport.NodeID
	proposed    map[transport.WindowID][2]int
	shown       map[transport.WindowID]bool
	focused     transport.WindowID
	cleared     int
	manageFinis int
	renderFinis int
	warped      bool
}

func newFakeRequester() *fakeRequester {
	return &fakeRequester{
		nodes:    make(map[transport.WindowID]transport.NodeID),
		proposed: make(map[transport.WindowID][2]int),
		shown:    make(map[transport.WindowID]bool),
	}
}

func (f *fakeRequester) ManageFinish()  { f.manageFinis++ }
func (f *fakeRequester) RenderFinish()  { f.renderFinis++ }
func (f *fakeRequester) ManageDirty()   {}
func (f *fakeRequester) Show(w transport.WindowID) { f.shown[w] = true }
func (f *fakeRequester) Hide(w transport.WindowID) { f.shown[w] = false }
func (f *fakeRequester) CloseWindow(w transport.WindowID) {}
func (f *fakeRequester) ProposeDimensions(w transport.WindowID, width, height int) {
	f.proposed[w] = [2]int{width, height}
}
func (f *fakeRequester) SetTiled(w transport.WindowID, edges transport.Edges)                 {}
func (f *fakeRequester) SetBorders(w transport.WindowID, edges transport.Edges, width int, color transport.Color) {
}
func (f *fakeRequester) Fullscreen(w transport.WindowID, output transport.OutputID) {}
func (f *fakeRequester) ExitFullscreen(w transport.WindowID)                        {}
func (f *fakeRequester) InformFullscreen(w transport.WindowID)                      {}
func (f *fakeRequester) InformNotFullscreen(w transport.WindowID)                   {}
func (f *fakeRequester) GetNode(w transport.WindowID) transport.NodeID {
	if n, ok := f.nodes[w]; ok {
		return n
	}
	n := transport.NodeID(len(f.nodes) + 1)
	f.nodes[w] = n
	return n
}
func (f *fakeRequester) SetPosition(n transport.NodeID, x, y int) {}
func (f *fakeRequester) PlaceTop(n transport.NodeID)              {}
func (f *fakeRequester) FocusWindow(s transport.SeatID, w transport.WindowID) { f.focused = w }
func (f *fakeRequester) ClearFocus(s transport.SeatID)                       { f.cleared++ }
func (f *fakeRequester) PointerWarp(s transport.SeatID, x, y int)            { f.warped = true }
func (f *fakeRequester) NewBinding(modMask uint32, keysym string) transport.BindingID {
	return 0
}
func (f *fakeRequester) EnableBinding(b transport.BindingID) {}
func (f *fakeRequester) DestroyBinding(b transport.BindingID)                {}
func (f *fakeRequester) SetDefaultAnchor(output transport.OutputID)          {}
func (f *fakeRequester) NewOutputConfiguration() transport.OutputConfiguration {
	return nil
}

func TestManageStartProposesDimensionsOnce(t *testing.T) {
	s := newTiledFixture("DP-1", geom.Rect{X: 0, Y: 0, W: 1000, H: 1000}, 1)
	req := newFakeRequester()
	rc := NewReconciler(s, req, LayoutConfig{Gaps: 10, BorderWidth: 2})

	rc.ManageStart(nil)

	if _, ok := req.proposed[1]; !ok {
		t.Fatal("want ProposeDimensions called on first pass")
	}
	if req.manageFinis != 1 {
		t.Fatalf("want exactly one ManageFinish, got %d", req.manageFinis)
	}
	if !req.shown[1] {
		t.Fatal("want the visible window shown")
	}

	req.proposed = map[transport.WindowID][2]int{}
	rc.ManageStart(nil)
	if _, ok := req.proposed[1]; ok {
		t.Fatal("want no re-proposal once geometry is unchanged (dedupe cache)")
	}
}

func TestManageStartAppliesQueuedWarp(t *testing.T) {
	s := newTiledFixture("DP-1", geom.Rect{X: 0, Y: 0, W: 1000, H: 1000}, 1)
	s.QueueWarp(100, 100)
	req := newFakeRequester()
	rc := NewReconciler(s, req, LayoutConfig{})

	rc.ManageStart(nil)

	if !req.warped {
		t.Fatal("want queued warp applied during manage_start")
	}
	if s.PendingWarp != nil {
		t.Fatal("want warp cleared after being applied")
	}
}

func TestManageStartJigglesFocusOnRetry(t *testing.T) {
	s := newTiledFixture("DP-1", geom.Rect{X: 0, Y: 0, W: 1000, H: 1000}, 1)
	w, _ := s.Windows.Get(1)
	w.RetryCount = 1 // odd: expect clear_focus this pass
	req := newFakeRequester()
	rc := NewReconciler(s, req, LayoutConfig{})

	rc.ManageStart(nil)

	if req.cleared != 1 {
		t.Fatalf("want clear_focus on odd retry_count, got %d clears", req.cleared)
	}
}

func TestOnDimensionsRetriesWithinTolerance(t *testing.T) {
	s := newTiledFixture("DP-1", geom.Rect{X: 0, Y: 0, W: 1000, H: 1000}, 1)
	s.LastGeometry[1] = geom.Rect{X: 0, Y: 0, W: 100, H: 100}
	req := newFakeRequester()
	rc := NewReconciler(s, req, LayoutConfig{})

	rc.OnDimensions(1, 100, 101) // within 2px tolerance
	w, _ := s.Windows.Get(1)
	if w.RetryCount != 0 {
		t.Fatalf("want no retry within tolerance, got %d", w.RetryCount)
	}

	rc.OnDimensions(1, 50, 50) // far off
	if w.RetryCount != 1 {
		t.Fatalf("want retry_count incremented, got %d", w.RetryCount)
	}
}

func TestOnDimensionsSurrendersAtRetryCap(t *testing.T) {
	s := newTiledFixture("DP-1", geom.Rect{X: 0, Y: 0, W: 1000, H: 1000}, 1)
	s.LastGeometry[1] = geom.Rect{X: 0, Y: 0, W: 100, H: 100}
	w, _ := s.Windows.Get(1)
	w.RetryCount = maxRetries
	req := newFakeRequester()
	rc := NewReconciler(s, req, LayoutConfig{})

	rc.OnDimensions(1, 50, 50)
	if w.RetryCount != maxRetries {
		t.Fatalf("want retry_count to stay capped at %d, got %d", maxRetries, w.RetryCount)
	}
}
