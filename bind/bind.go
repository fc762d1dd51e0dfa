// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package bind implements the binding dispatcher (C8, spec.md §4.8):
// modifier-mask parsing, nested group composition, and ordered
// action-list dispatch on key press.
package bind

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cap153/rrwm/spawner"
	"github.com/cap153/rrwm/transport"
	"github.com/cap153/rrwm/wm"
	shellwords "github.com/mattn/go-shellwords"
)

// Mod is a parsed modifier mask.
type Mod uint8

const (
	ModShift Mod = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// ParseModMask parses tokens separated by '_', '+', or '-' (spec.md
// §4.8); "none" or an empty string yields the empty mask.
func ParseModMask(s string) (Mod, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return 0, nil
	}
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '+' || r == '-'
	})
	var mask Mod
	for _, tok := range tokens {
		switch tok {
		case "shift":
			mask |= ModShift
		case "ctrl", "control":
			mask |= ModCtrl
		case "alt", "mod1":
			mask |= ModAlt
		case "super", "mod4", "logo":
			mask |= ModSuper
		case "none":
		default:
			return 0, fmt.Errorf("bind: unknown modifier token %q", tok)
		}
	}
	return mask, nil
}

// ActionKind names one of spec.md §4.8's recognized action verbs.
type ActionKind int

const (
	ActionCloseFocused ActionKind = iota
	ActionToggleFullscreen
	ActionToggleFloat
	ActionReloadConfig
	ActionFocus
	ActionMove
	ActionSpawn
	ActionShell
)

// Action is one entry in a binding's ordered action list.
type Action struct {
	Kind ActionKind
	Arg  string
}

// ParseAction resolves a config action name (case-insensitive) plus its
// literal argument into an Action.
func ParseAction(name, arg string) (Action, error) {
	switch strings.ToLower(name) {
	case "close_window", "close_focused":
		return Action{Kind: ActionCloseFocused}, nil
	case "fullscreen", "toggle_fullscreen":
		return Action{Kind: ActionToggleFullscreen}, nil
	case "toggle_float", "switch_float_tiling":
		return Action{Kind: ActionToggleFloat}, nil
	case "reload_configuration":
		return Action{Kind: ActionReloadConfig}, nil
	case "focus":
		return Action{Kind: ActionFocus, Arg: arg}, nil
	case "move":
		return Action{Kind: ActionMove, Arg: arg}, nil
	case "spawn":
		return Action{Kind: ActionSpawn, Arg: arg}, nil
	case "shell":
		return Action{Kind: ActionShell, Arg: arg}, nil
	default:
		return Action{}, fmt.Errorf("bind: unknown action %q", name)
	}
}

// KeyEntry is one keysym's binding within a group.
type KeyEntry struct {
	Keysym  string
	Actions []Action
}

// Group is a (possibly nested) modifier scope (spec.md §4.8: "an outer
// group's modifier is OR'ed into the inner key's mask").
type Group struct {
	Mod      string
	Keys     []KeyEntry
	Children []Group
}

type bindKey struct {
	mask   Mod
	keysym string
}

type binding struct {
	mask    Mod
	keysym  string
	actions []Action
	id      transport.BindingID
}

// Dispatcher owns the live binding table and routes compositor
// OnBindingPressed events to the configured action lists.
type Dispatcher struct {
	state *wm.State
	req   transport.Requester
	spawn spawner.Spawner

	byKey map[bindKey]*binding
	byID  map[transport.BindingID]*binding

	// ReloadRequested is set when a dispatched reload_configuration action
	// runs; app.App.OnManageStart then re-reads the config file and calls
	// Rebuild, which clears this flag.
	ReloadRequested bool
}

// NewDispatcher constructs an empty Dispatcher.
func NewDispatcher(state *wm.State, req transport.Requester, sp spawner.Spawner) *Dispatcher {
	return &Dispatcher{
		state: state,
		req:   req,
		spawn: sp,
		byKey: make(map[bindKey]*binding),
		byID:  make(map[transport.BindingID]*binding),
	}
}

// Load registers groups as new live bindings, creating one compositor
// binding object per keysym entry (spec.md §4.8).
func (d *Dispatcher) Load(groups []Group) error {
	for _, g := range groups {
		if err := d.loadGroup(g, 0); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) loadGroup(g Group, parentMask Mod) error {
	own, err := ParseModMask(g.Mod)
	if err != nil {
		return err
	}
	mask := parentMask | own

	for _, k := range g.Keys {
		key := bindKey{mask: mask, keysym: strings.ToLower(k.Keysym)}
		b := &binding{mask: mask, keysym: k.Keysym, actions: k.Actions}
		b.id = d.req.NewBinding(uint32(mask), k.Keysym)
		d.byKey[key] = b
		d.byID[b.id] = b
	}
	for _, child := range g.Children {
		if err := d.loadGroup(child, mask); err != nil {
			return err
		}
	}
	return nil
}

// BindingIDs returns every live binding object, for the reconciler's
// per-manage_start re-enable pass (spec.md §4.7 step 11).
func (d *Dispatcher) BindingIDs() []transport.BindingID {
	out := make([]transport.BindingID, 0, len(d.byID))
	for id := range d.byID {
		out = append(out, id)
	}
	return out
}

// Rebuild implements spec.md §4.8's reload: destroy every current
// binding object, load the freshly parsed groups, and dirty the
// compositor so the new bindings go live on the next manage_start.
func (d *Dispatcher) Rebuild(groups []Group) error {
	for _, b := range d.byID {
		d.req.DestroyBinding(b.id)
	}
	d.byKey = make(map[bindKey]*binding)
	d.byID = make(map[transport.BindingID]*binding)
	if err := d.Load(groups); err != nil {
		return err
	}
	d.state.MarkDirty()
	d.ReloadRequested = false
	return nil
}

// Dispatch runs a binding's action list in order (spec.md §4.8's "On key
// press" rule).
func (d *Dispatcher) Dispatch(id transport.BindingID) {
	b, ok := d.byID[id]
	if !ok {
		return
	}
	for _, act := range b.actions {
		d.run(act)
	}
}

func (d *Dispatcher) run(act Action) {
	s := d.state
	switch act.Kind {
	case ActionCloseFocused:
		if s.FocusedWindow != 0 {
			d.req.CloseWindow(s.FocusedWindow)
		}
	case ActionToggleFullscreen:
		if w, ok := s.Windows.Get(s.FocusedWindow); ok {
			s.SetFullscreen(w.ID, !w.IsFullscreen)
		}
	case ActionToggleFloat:
		if w, ok := s.Windows.Get(s.FocusedWindow); ok {
			if w.IsFloat {
				s.ToggleToTile(w.ID)
			} else {
				s.ToggleToFloat(w.ID)
			}
		}
	case ActionReloadConfig:
		d.ReloadRequested = true
	case ActionFocus:
		d.runDirectional(act.Arg, true)
	case ActionMove:
		d.runDirectional(act.Arg, false)
	case ActionSpawn:
		if d.spawn == nil {
			return
		}
		argv, err := shellwords.Parse(act.Arg)
		if err != nil || len(argv) == 0 {
			return
		}
		_ = d.spawn.SpawnArgv(argv)
	case ActionShell:
		if d.spawn != nil {
			_ = d.spawn.SpawnShell(act.Arg)
		}
	}
}

func (d *Dispatcher) runDirectional(arg string, isFocus bool) {
	s := d.state
	switch strings.ToLower(arg) {
	case "left":
		if isFocus {
			s.DirectionalFocus(wm.DirLeft)
		} else {
			s.MoveDirectional(wm.DirLeft)
		}
	case "right":
		if isFocus {
			s.DirectionalFocus(wm.DirRight)
		} else {
			s.MoveDirectional(wm.DirRight)
		}
	case "up":
		if isFocus {
			s.DirectionalFocus(wm.DirUp)
		} else {
			s.MoveDirectional(wm.DirUp)
		}
	case "down":
		if isFocus {
			s.DirectionalFocus(wm.DirDown)
		} else {
			s.MoveDirectional(wm.DirDown)
		}
	case "left_output":
		if isFocus {
			s.FocusOutput(wm.DirLeft)
		} else {
			s.MoveToOutput(s.FocusedWindow, wm.DirLeft)
		}
	case "right_output":
		if isFocus {
			s.FocusOutput(wm.DirRight)
		} else {
			s.MoveToOutput(s.FocusedWindow, wm.DirRight)
		}
	case "up_output":
		if isFocus {
			s.FocusOutput(wm.DirUp)
		} else {
			s.MoveToOutput(s.FocusedWindow, wm.DirUp)
		}
	case "down_output":
		if isFocus {
			s.FocusOutput(wm.DirDown)
		} else {
			s.MoveToOutput(s.FocusedWindow, wm.DirDown)
		}
	default:
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return
		}
		mask := uint32(1) << uint(n-1)
		if isFocus {
			s.FocusTag(mask)
		} else {
			s.MoveToTag(s.FocusedWindow, mask, false, wm.HintLeftmost)
		}
	}
}
