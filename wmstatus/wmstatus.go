// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package wmstatus produces the waybar-style status JSON and serves the
// broadcast and command Unix sockets (spec.md §6).
package wmstatus

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cap153/rrwm/internal/rlog"
	"github.com/cap153/rrwm/wm"
)

// deadlineNow yields a deadline one millisecond ahead, so the next Accept
// on a net.UnixListener takes a connection that is already pending and
// otherwise gives up almost at once instead of blocking (spec.md §4.10
// steps 6-7 run only after `poll` has already reported readability). An
// already-elapsed deadline would make Accept fail before it tries.
func deadlineNow() time.Time {
	return time.Now().Add(time.Millisecond)
}

// TagIcons maps a tag's one-based position to a markup icon; a missing
// entry falls back to the tag's 1-based decimal number.
type TagIcons map[int]string

// Styles are the three waybar markup wrappers configured under the
// "waybar" config section (spec.md §6).
type Styles struct {
	Focused  string // printf-style, one %s placeholder for the icon
	Occupied string
	Empty    string
}

func (s Styles) apply(kind string, icon string) string {
	tmpl := s.Empty
	switch kind {
	case "focused":
		tmpl = s.Focused
	case "occupied":
		tmpl = s.Occupied
	}
	if tmpl == "" {
		return icon
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, icon)
	}
	return tmpl + icon
}

// payload is the wire shape of the broadcast status JSON (spec.md §6).
type payload struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// Compose renders the current status JSON line (without trailing
// newline) for state, per spec.md §6's tag-span and styling rules.
func Compose(state *wm.State, icons TagIcons, styles Styles) string {
	focusedIdx := -1
	if fw, ok := state.Windows.Get(state.FocusedWindow); ok {
		focusedIdx = wm.TagIndex(fw.TagMask)
	}
	occupied := state.Windows.OccupiedTags()
	maxIdx := wm.MaxOccupiedIndex(occupied)
	if focusedIdx > maxIdx {
		maxIdx = focusedIdx
	}
	last := maxIdx + 1
	if last > 31 {
		last = 31
	}

	var b strings.Builder
	for i := 0; i <= last; i++ {
		icon := icons[i+1]
		if icon == "" {
			icon = fmt.Sprintf("%d", i+1)
		}
		mask := uint32(1) << uint(i)
		switch {
		case mask == state.FocusedTagShadow:
			b.WriteString(styles.apply("focused", icon))
		case occupied&mask != 0:
			b.WriteString(styles.apply("occupied", icon))
		default:
			b.WriteString(styles.apply("empty", icon))
		}
	}

	appID := ""
	if fw, ok := state.Windows.Get(state.FocusedWindow); ok {
		appID = fw.AppID
	}

	p := payload{Text: b.String(), Tooltip: "Focus: " + appID, Class: "rrwm-status"}
	out, err := json.Marshal(p)
	if err != nil {
		rlog.Warn.Printf("wmstatus: marshal failed: %v", err)
		return ""
	}
	return string(out)
}

// BroadcastServer owns the broadcast-socket listener and connected
// client list (spec.md §6, §5 "shared resources").
type BroadcastServer struct {
	listener *net.UnixListener
	clients  []net.Conn
	lastSent string
}

// ListenBroadcast binds the broadcast socket at path, removing any stale
// socket file left by a previous run.
func ListenBroadcast(path string) (*BroadcastServer, error) {
	_ = os.Remove(path)
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, err
	}
	l, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, err
	}
	return &BroadcastServer{listener: l}, nil
}

// FD returns the listener's file descriptor for poll(2).
func (b *BroadcastServer) FD() int {
	f, err := b.listener.File()
	if err != nil {
		return -1
	}
	return int(f.Fd())
}

// AcceptPending accepts every backlogged connection (non-blocking) and
// greets each with the given status JSON (spec.md §4.10 step 6).
func (b *BroadcastServer) AcceptPending(statusJSON string) {
	for {
		_ = b.listener.SetDeadline(deadlineNow())
		conn, err := b.listener.Accept()
		if err != nil {
			return
		}
		if _, err := conn.Write([]byte(statusJSON + "\n")); err != nil {
			conn.Close()
			continue
		}
		b.clients = append(b.clients, conn)
	}
}

// Broadcast writes statusJSON to every connected client if it differs
// from the last broadcast (spec.md §8 law L4), dropping any client that
// errors on write (spec.md §5 "removed on first write error").
func (b *BroadcastServer) Broadcast(statusJSON string) {
	if statusJSON == b.lastSent {
		return
	}
	b.lastSent = statusJSON
	line := []byte(statusJSON + "\n")
	live := b.clients[:0]
	for _, c := range b.clients {
		if _, err := c.Write(line); err != nil {
			c.Close()
			continue
		}
		live = append(live, c)
	}
	b.clients = live
}

// Publish implements wm.StatusPublisher, letting a Reconciler drive
// broadcasts directly through the dedupe-and-fan-out path above.
func (b *BroadcastServer) Publish(payload string) error {
	b.Broadcast(payload)
	return nil
}

// Close closes the listener and every connected client.
func (b *BroadcastServer) Close() {
	b.listener.Close()
	for _, c := range b.clients {
		c.Close()
	}
}

// CommandServer owns the command-socket listener (spec.md §6, §4.10
// step 7).
type CommandServer struct {
	listener *net.UnixListener
	state    *wm.State
}

// ListenCommand binds the command socket at path.
func ListenCommand(path string, state *wm.State) (*CommandServer, error) {
	_ = os.Remove(path)
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, err
	}
	l, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, err
	}
	return &CommandServer{listener: l, state: state}, nil
}

// FD returns the listener's file descriptor for poll(2).
func (c *CommandServer) FD() int {
	f, err := c.listener.File()
	if err != nil {
		return -1
	}
	return int(f.Fd())
}

// AcceptOne accepts a single pending request, routes it, replies, and
// closes the connection (spec.md §4.10 step 7 names exactly one request
// per readiness event).
func (c *CommandServer) AcceptOne() {
	_ = c.listener.SetDeadline(deadlineNow())
	conn, err := c.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}
	cmd := strings.TrimSpace(string(buf[:n]))

	switch cmd {
	case "ls_clients":
		conn.Write([]byte(lsClients(c.state)))
	default:
		conn.Write([]byte(fmt.Sprintf("unknown command: %s\n", cmd)))
	}
}

// Close closes the listener.
func (c *CommandServer) Close() {
	c.listener.Close()
}

// Sockets bundles a BroadcastServer and CommandServer behind the shape
// mux.Loop polls, so the multiplexer never depends on this package's
// concrete types.
type Sockets struct {
	Broadcast *BroadcastServer
	Command   *CommandServer
}

func (s Sockets) BroadcastFD() int                 { return s.Broadcast.FD() }
func (s Sockets) CommandFD() int                   { return s.Command.FD() }
func (s Sockets) AcceptBroadcast(statusJSON string) { s.Broadcast.AcceptPending(statusJSON) }
func (s Sockets) AcceptCommand()                    { s.Command.AcceptOne() }

// lsClients renders the tab-delimited id/app_id/monitor/tag/float report
// (SPEC_FULL.md §E).
func lsClients(state *wm.State) string {
	windows := state.Windows.All()
	sort.Slice(windows, func(i, j int) bool { return windows[i].ID < windows[j].ID })
	var b strings.Builder
	for _, w := range windows {
		fmt.Fprintf(&b, "%d\t%s\t%s\t%d\t%t\n", w.ID, w.AppID, w.Monitor, w.TagMask, w.IsFloat)
	}
	return b.String()
}
