// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package bind

import "github.com/cap153/rrwm/transport"

// recordingRequester is a minimal transport.Requester stub for bind
// package tests: NewBinding hands out sequential ids, every other
// request is a no-op.
type recordingRequester struct {
	nextID  uint32
	created []transport.BindingID
	enabled []transport.BindingID
	destroyed []transport.BindingID
}

func (r *recordingRequester) ManageFinish() {}
func (r *recordingRequester) RenderFinish() {}
func (r *recordingRequester) ManageDirty()  {}

func (r *recordingRequester) Show(w transport.WindowID)        {}
func (r *recordingRequester) Hide(w transport.WindowID)        {}
func (r *recordingRequester) CloseWindow(w transport.WindowID) {}
func (r *recordingRequester) ProposeDimensions(w transport.WindowID, width, height int) {}
func (r *recordingRequester) SetTiled(w transport.WindowID, edges transport.Edges)      {}
func (r *recordingRequester) SetBorders(w transport.WindowID, edges transport.Edges, width int, color transport.Color) {
}
func (r *recordingRequester) Fullscreen(w transport.WindowID, output transport.OutputID) {}
func (r *recordingRequester) ExitFullscreen(w transport.WindowID)                        {}
func (r *recordingRequester) InformFullscreen(w transport.WindowID)                      {}
func (r *recordingRequester) InformNotFullscreen(w transport.WindowID)                   {}
func (r *recordingRequester) GetNode(w transport.WindowID) transport.NodeID             { return 0 }

func (r *recordingRequester) SetPosition(n transport.NodeID, x, y int) {}
func (r *recordingRequester) PlaceTop(n transport.NodeID)              {}

func (r *recordingRequester) FocusWindow(s transport.SeatID, w transport.WindowID) {}
func (r *recordingRequester) ClearFocus(s transport.SeatID)                       {}
func (r *recordingRequester) PointerWarp(s transport.SeatID, x, y int)            {}

func (r *recordingRequester) NewBinding(modMask uint32, keysym string) transport.BindingID {
	r.nextID++
	id := transport.BindingID(r.nextID)
	r.created = append(r.created, id)
	return id
}
func (r *recordingRequester) EnableBinding(b transport.BindingID) {
	r.enabled = append(r.enabled, b)
}
func (r *recordingRequester) DestroyBinding(b transport.BindingID) {
	r.destroyed = append(r.destroyed, b)
}

func (r *recordingRequester) SetDefaultAnchor(output transport.OutputID) {}

func (r *recordingRequester) NewOutputConfiguration() transport.OutputConfiguration {
	return nil
}
