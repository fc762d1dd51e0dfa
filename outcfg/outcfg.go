// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package outcfg implements the output configurator (C9, spec.md §4.9):
// mode/scale/transform parsing, horizontal auto-layout, atomic per-head
// commit, startup-focus selection, and mirror tag-sync wiring.
package outcfg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cap153/rrwm/geom"
	"github.com/cap153/rrwm/internal/rlog"
	"github.com/cap153/rrwm/transport"
	"github.com/cap153/rrwm/wm"
)

// defaultModeW/H is the mode picked, at any refresh rate, when nothing
// configured matches a reported mode (spec.md §4.9 step 1). A head that
// reports no 1920x1080 mode gets its preferred mode, else its first
// reported mode, else a synthesized 1920x1080.
const (
	defaultModeW = 1920
	defaultModeH = 1080
)

// ModeSpec is a parsed "WxH@R" mode selector; RefreshMHz is 0 when R was
// omitted, meaning "matches any".
type ModeSpec struct {
	W, H       int
	RefreshMHz int
	AnyRefresh bool
}

// ParseModeSpec parses "WxH@R" (R in mHz; missing R matches any mode at
// that resolution).
func ParseModeSpec(s string) (ModeSpec, error) {
	s = strings.TrimSpace(s)
	refresh := 0
	any := true
	if at := strings.IndexByte(s, '@'); at >= 0 {
		r, err := strconv.Atoi(s[at+1:])
		if err != nil {
			return ModeSpec{}, fmt.Errorf("outcfg: invalid refresh in mode %q: %w", s, err)
		}
		refresh = r
		any = false
		s = s[:at]
	}
	xi := strings.IndexByte(s, 'x')
	if xi < 0 {
		return ModeSpec{}, fmt.Errorf("outcfg: invalid mode %q: expected WxH[@R]", s)
	}
	w, err := strconv.Atoi(s[:xi])
	if err != nil {
		return ModeSpec{}, fmt.Errorf("outcfg: invalid mode width in %q: %w", s, err)
	}
	h, err := strconv.Atoi(s[xi+1:])
	if err != nil {
		return ModeSpec{}, fmt.Errorf("outcfg: invalid mode height in %q: %w", s, err)
	}
	return ModeSpec{W: w, H: h, RefreshMHz: refresh, AnyRefresh: any}, nil
}

// ParseTransform parses one of "normal|90|180|270|flipped|flipped-{90,180,270}".
func ParseTransform(s string) (transport.Transform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return transport.TransformNormal, nil
	case "90":
		return transport.Transform90, nil
	case "180":
		return transport.Transform180, nil
	case "270":
		return transport.Transform270, nil
	case "flipped":
		return transport.TransformFlipped, nil
	case "flipped-90":
		return transport.TransformFlipped90, nil
	case "flipped-180":
		return transport.TransformFlipped180, nil
	case "flipped-270":
		return transport.TransformFlipped270, nil
	default:
		return transport.TransformNormal, fmt.Errorf("outcfg: unknown transform %q", s)
	}
}

func rotates90(t transport.Transform) bool {
	switch t {
	case transport.Transform90, transport.Transform270, transport.TransformFlipped90, transport.TransformFlipped270:
		return true
	default:
		return false
	}
}

// Rule is one output.<name> config section (spec.md §6).
type Rule struct {
	Mode           string      `toml:"mode"`
	Scale          float64     `toml:"scale"`
	Transform      string      `toml:"transform"`
	Position       *geom.Point `toml:"position"`
	FocusAtStartup bool        `toml:"focus_at_startup"`
	Mirror         string      `toml:"mirror"`
}

// Configurator applies monitor mode/position/scale/transform
// transactions on output-manager done(serial) events.
type Configurator struct {
	state *wm.State
	req   transport.Requester
	rules map[string]Rule

	order       []transport.OutputID
	heads       map[transport.OutputID]transport.HeadInfo
	focusPicked bool
}

// New constructs a Configurator against state, applying rule overrides
// keyed by monitor name.
func New(state *wm.State, req transport.Requester, rules map[string]Rule) *Configurator {
	return &Configurator{
		state: state,
		req:   req,
		rules: rules,
		heads: make(map[transport.OutputID]transport.HeadInfo),
	}
}

// OnOutputHead records a reported head, registers its monitor, and
// learns the compositor's opaque output id (spec.md §3, §4.9).
func (c *Configurator) OnOutputHead(id transport.OutputID, info transport.HeadInfo) {
	if _, seen := c.heads[id]; !seen {
		c.order = append(c.order, id)
	}
	c.heads[id] = info
	c.state.Monitors.Register(info.Name)
	c.state.Monitors.SetOutputID(info.Name, id)
	if rule, ok := c.rules[info.Name]; ok && rule.Mirror != "" {
		c.state.Monitors.SetMirrorGroup(info.Name, mirrorGroupName(info.Name, rule.Mirror))
		c.state.Monitors.SetMirrorGroup(rule.Mirror, mirrorGroupName(info.Name, rule.Mirror))
	}
}

func mirrorGroupName(a, b string) string {
	if a < b {
		return a + "+" + b
	}
	return b + "+" + a
}

// OnOutputRemoved destroys a monitor on a head-removal event.
func (c *Configurator) OnOutputRemoved(id transport.OutputID) {
	info, ok := c.heads[id]
	if !ok {
		return
	}
	delete(c.heads, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.state.Monitors.Remove(info.Name)
}

// OnOutputDone implements spec.md §4.9's atomic layout pass.
func (c *Configurator) OnOutputDone(serial uint32) {
	cfg := c.req.NewOutputConfiguration()
	cursorX := 0
	type placed = struct {
		name string
		rect geom.Rect
	}
	var laidOut []placed

	for _, id := range c.order {
		info, ok := c.heads[id]
		if !ok {
			continue
		}
		rule := c.rules[info.Name]

		mode := pickMode(info, rule.Mode)
		scale := rule.Scale
		if scale <= 0 {
			scale = 1.0
		}
		transform, err := ParseTransform(rule.Transform)
		if err != nil {
			rlog.Warn.Printf("outcfg: %v, using normal", err)
			transform = transport.TransformNormal
		}

		logicalW, logicalH := mode.W, mode.H
		if rotates90(transform) {
			logicalW, logicalH = logicalH, logicalW
		}
		logicalW = int(float64(logicalW) / scale)
		logicalH = int(float64(logicalH) / scale)

		var x, y int
		if rule.Position != nil {
			x, y = rule.Position.X, rule.Position.Y
		} else {
			x, y = cursorX, 0
		}
		cursorX = x + logicalW

		cfg.SetHead(id, x, y, scale, transform, mode.W, mode.H, mode.RefreshMHz)
		laidOut = append(laidOut, placed{name: info.Name, rect: geom.Rect{X: x, Y: y, W: logicalW, H: logicalH}})
	}

	if err := cfg.Apply(serial); err != nil {
		rlog.Warn.Printf("outcfg: output configuration rejected/cancelled: %v", err)
		return
	}

	for _, p := range laidOut {
		c.state.Monitors.SetFullArea(p.name, p.rect)
	}

	c.pickStartupFocus(laidOut)
}

func pickMode(info transport.HeadInfo, wanted string) transport.Mode {
	if wanted != "" {
		if spec, err := ParseModeSpec(wanted); err == nil {
			for _, m := range info.Modes {
				if m.W == spec.W && m.H == spec.H && (spec.AnyRefresh || m.RefreshMHz == spec.RefreshMHz) {
					return m
				}
			}
		}
	}
	for _, m := range info.Modes {
		if m.W == defaultModeW && m.H == defaultModeH {
			return m
		}
	}
	for _, m := range info.Modes {
		if m.Preferred {
			return m
		}
	}
	if len(info.Modes) > 0 {
		return info.Modes[0]
	}
	return transport.Mode{W: defaultModeW, H: defaultModeH}
}

// pickStartupFocus implements spec.md §4.9 step 7 and DESIGN.md's Open
// Question #1 decision: first focus_at_startup monitor wins, in
// head-enumeration order, warning on any runner-up.
func (c *Configurator) pickStartupFocus(laidOut []struct {
	name string
	rect geom.Rect
}) {
	if c.focusPicked {
		return
	}
	var chosen string
	for _, p := range laidOut {
		if rule, ok := c.rules[p.name]; ok && rule.FocusAtStartup {
			if chosen == "" {
				chosen = p.name
			} else {
				rlog.Warn.Printf("outcfg: multiple focus_at_startup outputs configured; keeping %q, ignoring %q", chosen, p.name)
			}
		}
	}
	if chosen == "" && len(laidOut) > 0 {
		chosen = laidOut[0].name
	}
	if chosen == "" {
		return
	}
	c.focusPicked = true
	c.state.FocusedMonitor = chosen
	if mon, ok := c.state.Monitors.Get(chosen); ok {
		c.state.QueueWarpToRect(mon.UsableArea)
	}
}
