// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: wm/reconcile.go
// Summary: Render reconciler (C7): drives the compositor's manage_start /
// render_start transaction pair, including dedupe caches and the
// dimensions-retry jiggle.

package wm

import (
	"math"

	"github.com/cap153/rrwm/geom"
	"github.com/cap153/rrwm/transport"
)

// maxRetries is the dimensions-mismatch retry ceiling (spec.md §4.7):
// beyond it further retries would waste cycles and the window is
// surrendered to whatever size it last reported.
const maxRetries = 50

// LayoutConfig holds the appearance knobs the reconciler applies when
// walking trees (spec.md §4.7 step 8); sourced from the config package.
type LayoutConfig struct {
	Gaps         int
	BorderWidth  int
	SmartBorders bool
	BorderColor  transport.Color
}

// StatusPublisher is the external collaborator boundary for the
// status-bar JSON producer (spec.md §1 "out of scope"); only the data
// contract (a composed JSON string keyed to the state) is specified
// here.
type StatusPublisher interface {
	Publish(payload string) error
}

// Reconciler implements C7 against a transport.Requester. ComposeStatus
// is supplied by wmstatus (spec.md §6); Reconciler only owns the
// dedupe-before-send decision (law L4).
type Reconciler struct {
	State         *State
	Req           transport.Requester
	Config        LayoutConfig
	ComposeStatus func(*State) string
	Publisher     StatusPublisher
}

// NewReconciler constructs a Reconciler over an existing State.
func NewReconciler(state *State, req transport.Requester, cfg LayoutConfig) *Reconciler {
	return &Reconciler{State: state, Req: req, Config: cfg}
}

// ManageStart implements spec.md §4.7's manage_start phase. bindings is
// the full set of active key-binding objects to re-enable each pass
// (spec.md §4.8).
func (rc *Reconciler) ManageStart(bindings []transport.BindingID) {
	s := rc.State

	rc.publishStatus()

	if s.PendingWarp != nil {
		rc.Req.PointerWarp(s.PendingWarp.Seat, s.PendingWarp.X, s.PendingWarp.Y)
		s.PendingWarp = nil
	}

	s.SyncFocusedTagShadow()

	s.RecoverFocus(s.LastDir)

	for _, w := range s.Windows.All() {
		rc.materializeFullscreen(w)
	}

	for _, w := range s.Windows.All() {
		if w.AppID == "" || IsBlacklisted(w.AppID) {
			continue
		}
		mon, ok := s.Monitors.Get(w.Monitor)
		if !ok {
			continue
		}
		if w.TagMask&mon.ActiveTag != 0 {
			rc.Req.Show(w.ID)
		} else {
			rc.Req.Hide(w.ID)
		}
	}

	rc.requestFocus()

	for _, mon := range s.Monitors.All() {
		rc.tiledSizingPass(mon)
	}

	for _, w := range s.Windows.All() {
		if w.IsFloat && !w.IsFullscreen {
			rc.floatSizingPass(w)
		}
	}

	rc.defaultAnchor()

	for _, b := range bindings {
		rc.Req.EnableBinding(b)
	}

	rc.Req.ManageFinish()
}

func (rc *Reconciler) publishStatus() {
	if rc.ComposeStatus == nil || rc.Publisher == nil {
		return
	}
	s := rc.State
	payload := rc.ComposeStatus(s)
	if payload == s.lastSentJSON {
		return
	}
	if err := rc.Publisher.Publish(payload); err == nil {
		s.lastSentJSON = payload
	}
}

func (rc *Reconciler) materializeFullscreen(w *Window) {
	if w.IsFullscreen {
		if target, ok := rc.State.FullscreenTargetOutput(w); ok {
			rc.Req.Fullscreen(w.ID, target.OutputID)
		}
		rc.Req.InformFullscreen(w.ID)
		w.ProposedW, w.ProposedH = 0, 0
		return
	}
	rc.Req.ExitFullscreen(w.ID)
	rc.Req.InformNotFullscreen(w.ID)
}

func (rc *Reconciler) requestFocus() {
	s := rc.State
	if s.FocusedWindow == 0 {
		return
	}
	w, ok := s.Windows.Get(s.FocusedWindow)
	if !ok {
		return
	}
	if w.RetryCount == 0 {
		rc.Req.FocusWindow(s.Seat, w.ID)
		return
	}
	if w.RetryCount%2 == 1 {
		rc.Req.ClearFocus(s.Seat)
	} else {
		rc.Req.FocusWindow(s.Seat, w.ID)
	}
}

// edgeInsets computes the per-edge inset for a leaf rectangle against
// its monitor's usable_area (spec.md §4.7 step 8).
func edgeInsets(leaf, usable geom.Rect, gaps, border int, smartBorders bool, soleTiled bool) (l, t, r, b int) {
	if gaps < border {
		gaps = border
	}
	if smartBorders && soleTiled {
		return 0, 0, 0, 0
	}
	half := (gaps + 1) / 2
	if leaf.X == usable.X {
		l = gaps
	} else {
		l = half
	}
	if leaf.Y == usable.Y {
		t = gaps
	} else {
		t = half
	}
	if leaf.X+leaf.W == usable.X+usable.W {
		r = gaps
	} else {
		r = half
	}
	if leaf.Y+leaf.H == usable.Y+usable.H {
		b = gaps
	} else {
		b = half
	}
	return l, t, r, b
}

func (rc *Reconciler) tiledSizingPass(mon *Monitor) {
	s := rc.State
	tree := s.Tree(TreeKey{Monitor: mon.Name, Tag: mon.ActiveTag})
	leaves := Render(tree, mon.UsableArea)
	solo := len(leaves) == 1

	for _, lr := range leaves {
		w, ok := s.Windows.Get(lr.Window)
		if !ok {
			continue
		}
		l, t, r, b := edgeInsets(lr.Rect, mon.UsableArea, rc.Config.Gaps, rc.Config.BorderWidth, rc.Config.SmartBorders, solo)
		content := lr.Rect.Inset(l, t, r, b)
		s.LastGeometry[w.ID] = content

		borderWidth := 0
		if w.ID == s.FocusedWindow {
			borderWidth = rc.Config.BorderWidth
		}
		rc.Req.SetBorders(w.ID, transport.EdgeAll, borderWidth, rc.Config.BorderColor)

		if content.W != w.ProposedW || content.H != w.ProposedH || w.RetryCount > 0 {
			rc.Req.ProposeDimensions(w.ID, content.W, content.H)
			w.ProposedW, w.ProposedH = content.W, content.H
		}
		rc.Req.SetTiled(w.ID, transport.EdgeAll)
	}
}

func (rc *Reconciler) floatSizingPass(w *Window) {
	if w.FloatRect.W != w.ProposedW || w.FloatRect.H != w.ProposedH || w.RetryCount > 0 {
		rc.Req.ProposeDimensions(w.ID, w.FloatRect.W, w.FloatRect.H)
		w.ProposedW, w.ProposedH = w.FloatRect.W, w.FloatRect.H
	}
	rc.Req.SetBorders(w.ID, transport.EdgeAll, rc.Config.BorderWidth, rc.Config.BorderColor)
	rc.Req.SetTiled(w.ID, transport.EdgeNone)
}

func (rc *Reconciler) defaultAnchor() {
	s := rc.State
	mon, ok := s.Monitors.Get(s.FocusedMonitor)
	if !ok {
		return
	}
	rc.Req.SetDefaultAnchor(mon.OutputID)
}

// RenderStart implements spec.md §4.7's render_start phase.
func (rc *Reconciler) RenderStart() {
	s := rc.State

	for _, mon := range s.Monitors.All() {
		tree := s.Tree(TreeKey{Monitor: mon.Name, Tag: mon.ActiveTag})
		leaves := Render(tree, mon.UsableArea)
		solo := len(leaves) == 1
		for _, lr := range leaves {
			w, ok := s.Windows.Get(lr.Window)
			if !ok {
				continue
			}
			l, t, _, _ := edgeInsets(lr.Rect, mon.UsableArea, rc.Config.Gaps, rc.Config.BorderWidth, rc.Config.SmartBorders, solo)
			node := rc.Req.GetNode(w.ID)
			rc.Req.SetPosition(node, lr.Rect.X+l, lr.Rect.Y+t)
			if w.ID == s.FocusedWindow {
				rc.Req.PlaceTop(node)
			}
		}
	}

	for _, w := range s.Windows.All() {
		if w.IsFloat && !w.IsFullscreen {
			node := rc.Req.GetNode(w.ID)
			rc.Req.SetPosition(node, w.FloatRect.X, w.FloatRect.Y)
			rc.Req.PlaceTop(node)
		}
	}

	if s.FocusedWindow != 0 {
		rc.Req.PlaceTop(rc.Req.GetNode(s.FocusedWindow))
	}

	rc.Req.RenderFinish()
}

// OnDimensions implements spec.md §4.7's dimensions-mismatch retry: on a
// dimensions(w,h) event for a non-fullscreen, non-float window, compare
// against last_geometry; past a 2px tolerance, retry up to maxRetries
// before surrendering.
func (rc *Reconciler) OnDimensions(id transport.WindowID, w, h int) {
	win, ok := rc.State.Windows.Get(id)
	if !ok || win.IsFullscreen || win.IsFloat {
		return
	}
	last, ok := rc.State.LastGeometry[id]
	if !ok {
		return
	}
	dw := math.Abs(float64(w - last.W))
	dh := math.Abs(float64(h - last.H))
	if math.Max(dw, dh) <= 2 {
		win.RetryCount = 0
		return
	}
	if win.RetryCount >= maxRetries {
		return
	}
	win.RetryCount++
	rc.State.MarkDirty()
}
