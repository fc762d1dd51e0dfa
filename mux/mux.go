// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package mux implements the single-threaded event multiplexer (C10,
// spec.md §4.10): a readiness loop over the compositor transport fd and
// the two Unix socket listener fds, with exactly one suspension point.
package mux

import (
	"golang.org/x/sys/unix"

	"github.com/cap153/rrwm/transport"
)

// StatusSource supplies the current deduplicated-ready status JSON, used
// to greet newly accepted broadcast clients.
type StatusSource interface {
	Status() string
}

// Sockets groups the two Unix-domain listeners the loop polls alongside
// the transport fd.
type Sockets interface {
	BroadcastFD() int
	CommandFD() int
	AcceptBroadcast(statusJSON string)
	AcceptCommand()
}

// Loop drives the readiness procedure of spec.md §4.10 until Stop is
// called or the transport reports a fatal error.
//
// ReloadFD and OnReload together fold an external reload signal (spec.md
// §4.8's reload_configuration, raised out-of-process by fsnotify) into
// the same single suspension point every other event passes through, so
// OnReload always runs on the loop's own goroutine with exclusive access
// to state (spec.md §5/§9) instead of racing it from a separate
// goroutine. ReloadFD is a self-pipe style read end: whatever signals the
// reload writes one byte to the pipe's write end and never touches
// shared state directly. Leave ReloadFD at 0 to disable this source.
type Loop struct {
	Transport transport.Transport
	Sockets   Sockets
	Status    StatusSource

	ReloadFD int
	OnReload func()

	stop bool
}

// Stop requests the loop exit after its current iteration.
func (l *Loop) Stop() { l.stop = true }

// Run executes the readiness loop. It returns only on Stop() or a fatal
// transport Dispatch/Flush error.
func (l *Loop) Run() error {
	for !l.stop {
		if err := l.step(); err != nil {
			return err
		}
	}
	return nil
}

// step runs exactly one iteration of spec.md §4.10's 7-step procedure.
func (l *Loop) step() error {
	// 1. Drain pending transport events (non-blocking).
	if err := l.Transport.Dispatch(); err != nil {
		return err
	}
	// 2. Flush outgoing transport buffer.
	if err := l.Transport.Flush(); err != nil {
		return err
	}

	// 3. Ask for a read-guard; if denied, more events are already queued
	// locally, so loop back to step 1 instead of blocking in poll.
	if !l.Transport.PrepareRead() {
		return nil
	}

	fds := []unix.PollFd{
		{Fd: int32(l.Transport.FD()), Events: unix.POLLIN},
		{Fd: int32(l.Sockets.BroadcastFD()), Events: unix.POLLIN},
		{Fd: int32(l.Sockets.CommandFD()), Events: unix.POLLIN},
	}
	if l.ReloadFD != 0 {
		fds = append(fds, unix.PollFd{Fd: int32(l.ReloadFD), Events: unix.POLLIN})
	}

	// 4. poll with infinite timeout — the sole suspension point
	// (spec.md §5).
	_, err := unix.Poll(fds, -1)
	if err != nil {
		if err == unix.EINTR {
			l.Transport.CancelRead()
			return nil
		}
		l.Transport.CancelRead()
		return err
	}

	// 5. Consume through the guard if the transport is readable,
	// otherwise drop it to avoid deadlocking the next PrepareRead.
	if fds[0].Revents&unix.POLLIN != 0 {
		if err := l.Transport.Dispatch(); err != nil {
			return err
		}
	} else {
		l.Transport.CancelRead()
	}

	// 6. Accept pending broadcast clients, greeting each with the
	// current status.
	if fds[1].Revents&unix.POLLIN != 0 {
		l.Sockets.AcceptBroadcast(l.Status.Status())
	}

	// 7. Accept and route one command-socket request.
	if fds[2].Revents&unix.POLLIN != 0 {
		l.Sockets.AcceptCommand()
	}

	// 8. Consume one pending reload byte and act on it, if wired.
	if l.ReloadFD != 0 && fds[3].Revents&unix.POLLIN != 0 {
		drainByte(l.ReloadFD)
		if l.OnReload != nil {
			l.OnReload()
		}
	}

	return nil
}

// drainByte consumes the single byte one reload signal writes; poll has
// already reported the fd readable, so the read does not block. A further
// pending byte keeps the fd readable for the next step.
func drainByte(fd int) {
	buf := make([]byte, 1)
	_, _ = unix.Read(fd, buf)
}
