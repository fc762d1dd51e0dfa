// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: wm/lifecycle.go
// Summary: Window and seat lifecycle (spec.md §3, §4.1): pre-registration
// on window creation, tiling promotion on first app_id, destruction on
// close, and the window-rule table config contributes.

package wm

import (
	"strings"

	"github.com/cap153/rrwm/transport"
)

// WindowRule is one `window.rule` entry (spec.md §6): windows whose
// app_id contains Match are placed floating and/or onto a fixed tag as
// soon as they're promoted to tiling.
type WindowRule struct {
	Match   string
	Float   bool
	TagMask uint32 // 0 means "leave tag_mask as assigned"
}

func matchRule(appID string, rules []WindowRule) (WindowRule, bool) {
	for _, r := range rules {
		if r.Match != "" && strings.Contains(appID, r.Match) {
			return r, true
		}
	}
	return WindowRule{}, false
}

// OnSeat records the seat id used for all subsequent focus/pointer
// requests (spec.md §6).
func (s *State) OnSeat(seat transport.SeatID) {
	s.Seat = seat
}

// OnWindow pre-registers a newly created window with an empty app_id
// (spec.md §3 lifecycle).
func (s *State) OnWindow(id transport.WindowID) {
	s.Windows.Register(id)
}

// OnWindowClosed destroys a window and removes it from whatever tree or
// history entries reference it (spec.md §3 lifecycle).
func (s *State) OnWindowClosed(id transport.WindowID) {
	w, ok := s.Windows.Get(id)
	if !ok {
		return
	}
	if w.Monitor != "" {
		key := TreeKey{Monitor: w.Monitor, Tag: w.TagMask}
		s.SetTree(key, RemoveAt(s.Tree(key), id))
		if s.History[key] == id {
			delete(s.History, key)
		}
	}
	if s.FocusedWindow == id {
		s.FocusedWindow = 0
	}
	delete(s.LastGeometry, id)
	s.Windows.Remove(id)
	s.MarkDirty()
}

// OnAppID implements spec.md §3's promotion rule: a window is assigned
// to a monitor and inserted into tiling on its first non-blacklisted
// app_id. rules applies any matching window.rule entry from config.
func (s *State) OnAppID(id transport.WindowID, appID string, rules []WindowRule) {
	w, ok := s.Windows.Get(id)
	if !ok {
		return
	}
	alreadyPlaced := w.Monitor != ""
	w.AppID = appID
	if alreadyPlaced || IsBlacklisted(appID) {
		s.MarkDirty()
		return
	}

	mon, ok := s.Monitors.Get(s.FocusedMonitor)
	if !ok {
		all := s.Monitors.All()
		if len(all) == 0 {
			return
		}
		mon = all[0]
	}

	w.Monitor = mon.Name
	w.TagMask = mon.ActiveTag

	if rule, matched := matchRule(appID, rules); matched {
		if rule.TagMask != 0 {
			w.TagMask = rule.TagMask
		}
		if rule.Float {
			w.IsFloat = true
			w.FloatRect = s.cascadeFloatRect(mon, w.TagMask)
			s.History[TreeKey{Monitor: mon.Name, Tag: w.TagMask}] = id
			s.MarkDirty()
			return
		}
	}

	key := TreeKey{Monitor: mon.Name, Tag: w.TagMask}
	s.insertIntoTree(key, id)
	s.History[key] = id
	s.MarkDirty()
}
