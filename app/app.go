// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package app wires the core state object, render reconciler, output
// configurator, and binding dispatcher into a single transport.Listener,
// so cmd/rrwm only has to hand it a transport.Transport and a config.
package app

import (
	"github.com/cap153/rrwm/bind"
	"github.com/cap153/rrwm/config"
	"github.com/cap153/rrwm/internal/rlog"
	"github.com/cap153/rrwm/outcfg"
	"github.com/cap153/rrwm/spawner"
	"github.com/cap153/rrwm/transport"
	"github.com/cap153/rrwm/wm"
)

// App implements transport.Listener by delegating each event to the
// collaborator that owns it (spec.md §9 "single global-state object").
type App struct {
	State        *wm.State
	Reconciler   *wm.Reconciler
	Configurator *outcfg.Configurator
	Dispatcher   *bind.Dispatcher

	// WindowRules are consulted on each OnAppID promotion (spec.md §6
	// `window.rule`); replaced wholesale on a config reload.
	WindowRules []wm.WindowRule
}

// New constructs an App around a fresh State, Reconciler, Configurator
// and Dispatcher for req.
func New(req transport.Requester, spawn spawner.Spawner, layout wm.LayoutConfig, outputRules map[string]outcfg.Rule) *App {
	state := wm.NewState()
	return &App{
		State:        state,
		Reconciler:   wm.NewReconciler(state, req, layout),
		Configurator: outcfg.New(state, req, outputRules),
		Dispatcher:   bind.NewDispatcher(state, req, spawn),
	}
}

func (a *App) OnSeat(s transport.SeatID) { a.State.OnSeat(s) }

func (a *App) OnOutputHead(id transport.OutputID, info transport.HeadInfo) {
	a.Configurator.OnOutputHead(id, info)
}
func (a *App) OnOutputDone(serial uint32)        { a.Configurator.OnOutputDone(serial) }
func (a *App) OnOutputRemoved(id transport.OutputID) { a.Configurator.OnOutputRemoved(id) }

func (a *App) OnWindow(id transport.WindowID) { a.State.OnWindow(id) }
func (a *App) OnAppID(id transport.WindowID, appID string) {
	a.State.OnAppID(id, appID, a.WindowRules)
}
func (a *App) OnWindowClosed(id transport.WindowID) { a.State.OnWindowClosed(id) }

func (a *App) OnDimensions(id transport.WindowID, w, h int) {
	a.Reconciler.OnDimensions(id, w, h)
}

func (a *App) OnManageStart() {
	if a.Dispatcher.ReloadRequested {
		// A reload_configuration key press re-reads the config file and
		// rebuilds the bindings here, before this manage_start enables them.
		fresh := config.Load()
		if err := a.Dispatcher.Rebuild(fresh.BindGroups()); err != nil {
			rlog.Warn.Printf("app: config reload: %v", err)
			a.Dispatcher.ReloadRequested = false
		} else {
			a.WindowRules = fresh.WindowRules()
		}
	}
	a.Reconciler.ManageStart(a.Dispatcher.BindingIDs())
}

func (a *App) OnRenderStart() { a.Reconciler.RenderStart() }

func (a *App) OnBindingPressed(id transport.BindingID) { a.Dispatcher.Dispatch(id) }

func (a *App) OnBarReservation(res transport.BarReservation) {
	a.State.Monitors.SetUsable(res)
	a.State.MarkDirty()
}
