// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
)

const sampleTOML = `
[input.keyboard]
layout = "us"

[window]
gaps = 8
smart_borders = true

[window.active.border]
width = 2
color = "#ff0000"

[[window.rule]]
matches = "pavucontrol"
float = true

[waybar]
focused_style = "<b>%s</b>"

[waybar.tag_icons]
1 = "A"
2 = "B"

[output."DP-1"]
mode = "1920x1080@60"
scale = 1.0
focus_at_startup = true

[[keybindings]]
mod = "super"

[[keybindings.keys]]
keysym = "q"

[[keybindings.keys.actions]]
action = "close_window"

[[keybindings.children]]
mod = "shift"

[[keybindings.children.keys]]
keysym = "q"

[[keybindings.children.keys.actions]]
action = "spawn"
arg = "kitty"
`

func TestConfigUnmarshalsAllSections(t *testing.T) {
	cfg := Default()
	if err := toml.Unmarshal([]byte(sampleTOML), cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if cfg.Input.Keyboard.Layout != "us" {
		t.Fatalf("keyboard layout = %q", cfg.Input.Keyboard.Layout)
	}
	if cfg.Window.Gaps != 8 || !cfg.Window.SmartBorders {
		t.Fatalf("window section = %+v", cfg.Window)
	}
	if cfg.Window.Active.Border.Width != 2 || cfg.Window.Active.Border.Color != "#ff0000" {
		t.Fatalf("border = %+v", cfg.Window.Active.Border)
	}
	if len(cfg.Window.Rule) != 1 || cfg.Window.Rule[0].Matches != "pavucontrol" || !cfg.Window.Rule[0].Float {
		t.Fatalf("rules = %+v", cfg.Window.Rule)
	}
	if rule, ok := cfg.Output["DP-1"]; !ok || rule.Mode != "1920x1080@60" || !rule.FocusAtStartup {
		t.Fatalf("output DP-1 rule = %+v, ok=%v", rule, ok)
	}
	if len(cfg.Keybindings) != 1 || cfg.Keybindings[0].Mod != "super" {
		t.Fatalf("keybindings = %+v", cfg.Keybindings)
	}
	if len(cfg.Keybindings[0].Children) != 1 || cfg.Keybindings[0].Children[0].Mod != "shift" {
		t.Fatalf("nested group = %+v", cfg.Keybindings[0])
	}
}

func TestBindGroupsResolvesActionsAndSkipsUnknown(t *testing.T) {
	cfg := Default()
	if err := toml.Unmarshal([]byte(sampleTOML), cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	groups := cfg.BindGroups()
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d", len(groups))
	}
	outer := groups[0]
	if len(outer.Keys) != 1 || len(outer.Keys[0].Actions) != 1 {
		t.Fatalf("outer keys = %+v", outer.Keys)
	}
	inner := outer.Children[0]
	if inner.Keys[0].Actions[0].Arg != "kitty" {
		t.Fatalf("inner action arg = %q", inner.Keys[0].Actions[0].Arg)
	}
}

func TestWindowRulesConvertsOneBasedTag(t *testing.T) {
	cfg := Default()
	cfg.Window.Rule = []RuleSpec{{Matches: "firefox", Tag: 3}}
	rules := cfg.WindowRules()
	if len(rules) != 1 || rules[0].TagMask != 1<<2 {
		t.Fatalf("rules = %+v", rules)
	}
}

func TestLayoutConfigFallsBackOnBadColor(t *testing.T) {
	cfg := Default()
	cfg.Window.Active.Border.Color = "not-a-color"
	lc := cfg.LayoutConfig()
	if lc.BorderColor.A != 0 {
		t.Fatalf("expected zero-value color fallback, got %+v", lc.BorderColor)
	}
}

func TestWaybarIconsParsesNumericKeys(t *testing.T) {
	cfg := Default()
	cfg.Waybar.TagIcons = map[string]string{"1": "A", "not-a-number": "ignored"}
	icons := cfg.WaybarIcons()
	if icons[1] != "A" {
		t.Fatalf("icons = %+v", icons)
	}
	if _, ok := icons[0]; ok {
		t.Fatal("expected non-numeric key to be skipped")
	}
}

func TestLoadReturnsDefaultWhenHomeUnresolvable(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("USERPROFILE", "")
	cfg := Load()
	if cfg == nil {
		t.Fatal("Load must never return nil")
	}
}
