// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: wm/window.go
// Summary: Window registry (C3): flat table of windows keyed by opaque id.

package wm

import (
	"sort"
	"strings"

	"github.com/cap153/rrwm/geom"
	"github.com/cap153/rrwm/transport"
)

// blacklistSubstrings are the app_id substrings excluded from tiling
// (spec.md §3).
var blacklistSubstrings = []string{"fcitx", "virtual"}

// IsBlacklisted reports whether appID should be excluded from tiling.
func IsBlacklisted(appID string) bool {
	for _, s := range blacklistSubstrings {
		if strings.Contains(appID, s) {
			return true
		}
	}
	return false
}

// Window is a single managed (or pre-registered) compositor window.
type Window struct {
	ID      transport.WindowID
	Monitor string // unset ("") until first app_id event
	TagMask uint32
	AppID   string // unset ("") before the first app_id event

	IsFloat      bool
	IsFullscreen bool
	FloatRect    geom.Rect

	ProposedW, ProposedH int
	RetryCount           int
}

// Tiling reports whether w should participate in tiling (registered,
// non-blacklisted app_id).
func (w *Window) Tiling() bool {
	return w.AppID != "" && !IsBlacklisted(w.AppID)
}

// WindowRegistry is the flat table of all windows.
type WindowRegistry struct {
	windows map[transport.WindowID]*Window
}

// NewWindowRegistry returns an empty registry.
func NewWindowRegistry() *WindowRegistry {
	return &WindowRegistry{windows: make(map[transport.WindowID]*Window)}
}

// Register pre-registers a window with an empty app_id (spec.md §3
// lifecycle: "created on window event, pre-registered with empty
// app_id").
func (r *WindowRegistry) Register(id transport.WindowID) *Window {
	if w, ok := r.windows[id]; ok {
		return w
	}
	w := &Window{ID: id, TagMask: 1}
	r.windows[id] = w
	return w
}

// Get looks up a window by id.
func (r *WindowRegistry) Get(id transport.WindowID) (*Window, bool) {
	w, ok := r.windows[id]
	return w, ok
}

// Remove destroys a window on a closed event.
func (r *WindowRegistry) Remove(id transport.WindowID) {
	delete(r.windows, id)
}

// All returns every registered window, sorted by ascending id for
// deterministic iteration (DESIGN.md Open Question #2: the directional
// tie-break order).
func (r *WindowRegistry) All() []*Window {
	out := make([]*Window, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OnMonitor returns tiling-eligible windows assigned to the given monitor.
func (r *WindowRegistry) OnMonitor(monitor string) []*Window {
	var out []*Window
	for _, w := range r.All() {
		if w.Monitor == monitor && w.Tiling() {
			out = append(out, w)
		}
	}
	return out
}

// OnMonitorTag returns tiling-eligible windows on (monitor, any bit of
// tagMask).
func (r *WindowRegistry) OnMonitorTag(monitor string, tagMask uint32) []*Window {
	var out []*Window
	for _, w := range r.All() {
		if w.Monitor == monitor && w.Tiling() && w.TagMask&tagMask != 0 {
			out = append(out, w)
		}
	}
	return out
}

// OccupiedTags is the OR of tag_mask over all tiling-eligible windows
// (spec.md §4.3).
func (r *WindowRegistry) OccupiedTags() uint32 {
	var mask uint32
	for _, w := range r.windows {
		if w.Tiling() {
			mask |= w.TagMask
		}
	}
	return mask
}

// OccupiedTagsOn is OccupiedTags filtered to a single monitor.
func (r *WindowRegistry) OccupiedTagsOn(monitor string) uint32 {
	var mask uint32
	for _, w := range r.windows {
		if w.Tiling() && w.Monitor == monitor {
			mask |= w.TagMask
		}
	}
	return mask
}

// MaxOccupiedIndex returns the highest set bit index across occupied
// tags, or -1 if none are occupied. Used for the dynamic cycle_tag bound
// (spec.md §4.4) and the status JSON tag span (spec.md §6).
func MaxOccupiedIndex(mask uint32) int {
	idx := -1
	for i := 0; i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			idx = i
		}
	}
	return idx
}

// TagIndex returns the bit index of a one-hot tag mask, or -1 if it is
// not one-hot (e.g. zero).
func TagIndex(mask uint32) int {
	if mask == 0 || mask&(mask-1) != 0 {
		return -1
	}
	for i := 0; i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}
