// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package config loads rrwm's declarative TOML config file and watches
// it for hot reload (spec.md §6, §7). Retargeted from the teacher's
// JSON/os.UserConfigDir load shape to TOML at $HOME/.config/<app>/config
// (SPEC_FULL.md §B).
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/fsnotify/fsnotify"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/cap153/rrwm/bind"
	"github.com/cap153/rrwm/internal/rlog"
	"github.com/cap153/rrwm/outcfg"
	"github.com/cap153/rrwm/wm"
	"github.com/cap153/rrwm/wmstatus"
)

const appName = "rrwm"

// Keyboard is the `input.keyboard` section.
type Keyboard struct {
	Layout  string `toml:"layout"`
	Variant string `toml:"variant"`
	Options string `toml:"options"`
	Model   string `toml:"model"`
}

// Input is the `input` section.
type Input struct {
	Keyboard Keyboard `toml:"keyboard"`
}

// Border is `window.active.border`.
type Border struct {
	Width int    `toml:"width"`
	Color string `toml:"color"`
}

// Active is `window.active`.
type Active struct {
	Border Border `toml:"border"`
}

// RuleSpec is one `window.rule` entry.
type RuleSpec struct {
	Matches string `toml:"matches"`
	Float   bool   `toml:"float"`
	Tag     int    `toml:"tag"` // 1-based; 0 means unset
}

// Window is the `window` section.
type Window struct {
	Gaps         int        `toml:"gaps"`
	SmartBorders bool       `toml:"smart_borders"`
	Active       Active     `toml:"active"`
	Rule         []RuleSpec `toml:"rule"`
}

// Waybar is the `waybar` section.
type Waybar struct {
	TagIcons      map[string]string `toml:"tag_icons"`
	FocusedStyle  string            `toml:"focused_style"`
	OccupiedStyle string            `toml:"occupied_style"`
	EmptyStyle    string            `toml:"empty_style"`
}

// actionSpec is one action entry inside a keybindings key.
type actionSpec struct {
	Action string `toml:"action"`
	Arg    string `toml:"arg"`
}

// keyEntrySpec is one keysym inside a keybindings group.
type keyEntrySpec struct {
	Keysym  string       `toml:"keysym"`
	Actions []actionSpec `toml:"actions"`
}

// groupSpec is a (possibly nested) keybindings modifier group.
type groupSpec struct {
	Mod      string         `toml:"mod"`
	Keys     []keyEntrySpec `toml:"keys"`
	Children []groupSpec    `toml:"children"`
}

// Config is the root of the declarative config file (spec.md §6).
type Config struct {
	Input       Input                  `toml:"input"`
	Keybindings []groupSpec            `toml:"keybindings"`
	Window      Window                 `toml:"window"`
	Waybar      Waybar                 `toml:"waybar"`
	Output      map[string]outcfg.Rule `toml:"output"`
}

// Default returns an empty, fully-zeroed configuration (spec.md §7:
// "config parse failure → log, continue with fully empty configuration").
func Default() *Config {
	return &Config{}
}

// Path returns $HOME/.config/<app>/config, resolving $HOME via
// mitchellh/go-homedir so a missing HOME env var still resolves through
// the OS user-info fallback.
func Path() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config"), nil
}

// Load reads and parses the config file at Path(). A missing file or a
// parse failure both degrade to Default() rather than failing the
// caller — spec.md §7's "config parse failure" taxonomy entry.
func Load() *Config {
	path, err := Path()
	if err != nil {
		rlog.Warn.Printf("config: cannot resolve home directory: %v", err)
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			rlog.Warn.Printf("config: cannot read %s: %v", path, err)
		}
		return Default()
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		rlog.Warn.Printf("config: parse failure in %s: %v, using empty configuration", path, err)
		return Default()
	}
	rlog.Debug.Printf("config: loaded from %s", path)
	return cfg
}

// Watch starts an fsnotify watch on the config file's directory and
// sends on changed whenever the file is written, so the caller can
// re-Load and Rebuild (spec.md §4.8 reload_configuration). The returned
// *fsnotify.Watcher must be Close()d by the caller.
func Watch(changed chan<- struct{}) (*fsnotify.Watcher, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == filepath.Clean(path) && (ev.Op&(fsnotify.Write|fsnotify.Create) != 0) {
					changed <- struct{}{}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				rlog.Warn.Printf("config: watch error: %v", err)
			}
		}
	}()
	return w, nil
}

// BindGroups converts the config's declarative keybindings section into
// bind.Group values, resolving each action entry via bind.ParseAction.
// A malformed action entry is logged and skipped rather than aborting
// the whole load (spec.md §7).
func (c *Config) BindGroups() []bind.Group {
	out := make([]bind.Group, 0, len(c.Keybindings))
	for _, g := range c.Keybindings {
		out = append(out, convertGroup(g))
	}
	return out
}

func convertGroup(g groupSpec) bind.Group {
	out := bind.Group{Mod: g.Mod}
	for _, k := range g.Keys {
		entry := bind.KeyEntry{Keysym: k.Keysym}
		for _, a := range k.Actions {
			action, err := bind.ParseAction(a.Action, a.Arg)
			if err != nil {
				rlog.Warn.Printf("config: %v, skipping", err)
				continue
			}
			entry.Actions = append(entry.Actions, action)
		}
		out.Keys = append(out.Keys, entry)
	}
	for _, child := range g.Children {
		out.Children = append(out.Children, convertGroup(child))
	}
	return out
}

// WindowRules converts the config's window.rule entries into
// wm.WindowRule values.
func (c *Config) WindowRules() []wm.WindowRule {
	out := make([]wm.WindowRule, 0, len(c.Window.Rule))
	for _, r := range c.Window.Rule {
		rule := wm.WindowRule{Match: r.Matches, Float: r.Float}
		if r.Tag > 0 && r.Tag <= 32 {
			rule.TagMask = 1 << uint(r.Tag-1)
		}
		out = append(out, rule)
	}
	return out
}

// LayoutConfig resolves the `window` section into wm.LayoutConfig,
// parsing the configured border color via wm.ParseColor; a bad color
// string leaves the border color at the zero (fully transparent) value
// (spec.md §7).
func (c *Config) LayoutConfig() wm.LayoutConfig {
	color, err := wm.ParseColor(c.Window.Active.Border.Color)
	if err != nil {
		if c.Window.Active.Border.Color != "" {
			rlog.Warn.Printf("config: %v, using a transparent border color", err)
		}
	}
	return wm.LayoutConfig{
		Gaps:         c.Window.Gaps,
		BorderWidth:  c.Window.Active.Border.Width,
		SmartBorders: c.Window.SmartBorders,
		BorderColor:  color,
	}
}

// WaybarIcons adapts the `waybar.tag_icons` section to wmstatus's
// one-based index keying.
func (c *Config) WaybarIcons() wmstatus.TagIcons {
	out := make(wmstatus.TagIcons, len(c.Waybar.TagIcons))
	for k, v := range c.Waybar.TagIcons {
		idx, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[idx] = v
	}
	return out
}

// WaybarStyles adapts the three configured markup templates to
// wmstatus.Styles.
func (c *Config) WaybarStyles() wmstatus.Styles {
	return wmstatus.Styles{
		Focused:  c.Waybar.FocusedStyle,
		Occupied: c.Waybar.OccupiedStyle,
		Empty:    c.Waybar.EmptyStyle,
	}
}
