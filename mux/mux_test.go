// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package mux

import (
	"os"
	"testing"

	"github.com/cap153/rrwm/transport"
)

// fakeTransport is a minimal transport.Transport stub driven by counters
// so tests can assert the exact step-ordering of spec.md §4.10.
type fakeTransport struct {
	fd int

	dispatchCalls  int
	flushCalls     int
	prepareReadOK  bool
	cancelReadCall int
}

func (t *fakeTransport) ManageFinish() {}
func (t *fakeTransport) RenderFinish() {}
func (t *fakeTransport) ManageDirty()  {}

func (t *fakeTransport) Show(w transport.WindowID)        {}
func (t *fakeTransport) Hide(w transport.WindowID)        {}
func (t *fakeTransport) CloseWindow(w transport.WindowID) {}
func (t *fakeTransport) ProposeDimensions(w transport.WindowID, width, height int) {}
func (t *fakeTransport) SetTiled(w transport.WindowID, edges transport.Edges)      {}
func (t *fakeTransport) SetBorders(w transport.WindowID, edges transport.Edges, width int, color transport.Color) {
}
func (t *fakeTransport) Fullscreen(w transport.WindowID, output transport.OutputID) {}
func (t *fakeTransport) ExitFullscreen(w transport.WindowID)                        {}
func (t *fakeTransport) InformFullscreen(w transport.WindowID)                      {}
func (t *fakeTransport) InformNotFullscreen(w transport.WindowID)                   {}
func (t *fakeTransport) GetNode(w transport.WindowID) transport.NodeID             { return 0 }

func (t *fakeTransport) SetPosition(n transport.NodeID, x, y int) {}
func (t *fakeTransport) PlaceTop(n transport.NodeID)              {}

func (t *fakeTransport) FocusWindow(s transport.SeatID, w transport.WindowID) {}
func (t *fakeTransport) ClearFocus(s transport.SeatID)                       {}
func (t *fakeTransport) PointerWarp(s transport.SeatID, x, y int)            {}

func (t *fakeTransport) NewBinding(modMask uint32, keysym string) transport.BindingID { return 0 }
func (t *fakeTransport) EnableBinding(b transport.BindingID)                         {}
func (t *fakeTransport) DestroyBinding(b transport.BindingID)                        {}

func (t *fakeTransport) SetDefaultAnchor(output transport.OutputID) {}

func (t *fakeTransport) NewOutputConfiguration() transport.OutputConfiguration { return nil }

func (t *fakeTransport) FD() int { return t.fd }
func (t *fakeTransport) Dispatch() error {
	t.dispatchCalls++
	return nil
}
func (t *fakeTransport) Flush() error {
	t.flushCalls++
	return nil
}
func (t *fakeTransport) PrepareRead() bool {
	return t.prepareReadOK
}
func (t *fakeTransport) CancelRead() {
	t.cancelReadCall++
}
func (t *fakeTransport) SetListener(transport.Listener) {}

type fakeSockets struct {
	broadcastFD, commandFD int
	acceptedStatus         string
	acceptedCommand        bool
}

func (s *fakeSockets) BroadcastFD() int { return s.broadcastFD }
func (s *fakeSockets) CommandFD() int   { return s.commandFD }
func (s *fakeSockets) AcceptBroadcast(statusJSON string) {
	s.acceptedStatus = statusJSON
}
func (s *fakeSockets) AcceptCommand() {
	s.acceptedCommand = true
}

type fakeStatus struct{ json string }

func (f fakeStatus) Status() string { return f.json }

// pipeFD returns a readable fd (one end of an os.Pipe) whose peer has
// already had data written to it, so poll reports it POLLIN-ready.
func pipeFD(t *testing.T) int {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	t.Cleanup(func() { r.Close(); w.Close() })
	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	return int(r.Fd())
}

// idleFD returns an fd that is never ready (read end of a pipe with no
// writer activity).
func idleFD(t *testing.T) int {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	t.Cleanup(func() { r.Close(); w.Close() })
	return int(r.Fd())
}

func TestStepSkipsPollWhenPrepareReadDenied(t *testing.T) {
	tr := &fakeTransport{fd: idleFD(t), prepareReadOK: false}
	sockets := &fakeSockets{broadcastFD: idleFD(t), commandFD: idleFD(t)}
	loop := &Loop{Transport: tr, Sockets: sockets, Status: fakeStatus{}}

	if err := loop.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if tr.dispatchCalls != 1 || tr.flushCalls != 1 {
		t.Fatalf("expected exactly one dispatch+flush before the denied PrepareRead, got dispatch=%d flush=%d", tr.dispatchCalls, tr.flushCalls)
	}
}

func TestStepAcceptsReadyBroadcastAndCommandSockets(t *testing.T) {
	tr := &fakeTransport{fd: idleFD(t), prepareReadOK: true}
	sockets := &fakeSockets{broadcastFD: pipeFD(t), commandFD: pipeFD(t)}
	loop := &Loop{Transport: tr, Sockets: sockets, Status: fakeStatus{json: `{"text":"1"}`}}

	if err := loop.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if sockets.acceptedStatus != `{"text":"1"}` {
		t.Fatalf("expected broadcast accept to fire with current status, got %q", sockets.acceptedStatus)
	}
	if !sockets.acceptedCommand {
		t.Fatal("expected command accept to fire")
	}
}

func TestStepCancelsReadGuardWhenTransportNotReady(t *testing.T) {
	tr := &fakeTransport{fd: idleFD(t), prepareReadOK: true}
	// poll has no timeout, so one other fd is ready to let step return.
	sockets := &fakeSockets{broadcastFD: pipeFD(t), commandFD: idleFD(t)}
	loop := &Loop{Transport: tr, Sockets: sockets, Status: fakeStatus{}}

	if err := loop.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if tr.cancelReadCall != 1 {
		t.Fatalf("expected CancelRead once when transport fd wasn't readable, got %d", tr.cancelReadCall)
	}
}

func TestStepDrainsAndActsOnReloadSignal(t *testing.T) {
	tr := &fakeTransport{fd: idleFD(t), prepareReadOK: true}
	sockets := &fakeSockets{broadcastFD: idleFD(t), commandFD: idleFD(t)}
	fired := 0
	loop := &Loop{
		Transport: tr,
		Sockets:   sockets,
		Status:    fakeStatus{},
		ReloadFD:  pipeFD(t),
		OnReload:  func() { fired++ },
	}

	if err := loop.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected OnReload to fire once, got %d", fired)
	}
}

func TestStepIgnoresReloadFDWhenNotReady(t *testing.T) {
	tr := &fakeTransport{fd: idleFD(t), prepareReadOK: true}
	// poll has no timeout, so one other fd is ready to let step return.
	sockets := &fakeSockets{broadcastFD: idleFD(t), commandFD: pipeFD(t)}
	fired := 0
	loop := &Loop{
		Transport: tr,
		Sockets:   sockets,
		Status:    fakeStatus{},
		ReloadFD:  idleFD(t),
		OnReload:  func() { fired++ },
	}

	if err := loop.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if fired != 0 {
		t.Fatalf("expected OnReload not to fire, got %d", fired)
	}
}

func TestRunStopsAfterStopCalled(t *testing.T) {
	tr := &fakeTransport{fd: idleFD(t), prepareReadOK: false}
	sockets := &fakeSockets{broadcastFD: idleFD(t), commandFD: idleFD(t)}
	loop := &Loop{Transport: tr, Sockets: sockets, Status: fakeStatus{}}

	loop.Stop()
	if err := loop.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
