// Package transport names the compositor control-protocol boundary as an
// interface. The wire format itself — encoding, framing, the global
// discovery handshake — is out of scope (spec.md §1): only the
// request/event surface spec.md §6 names is typed here, so the rest of
// this repository can be written and tested against a fake without ever
// encoding a byte on the wire.
//
// Naming and per-object-type request grouping follow the struct-per-
// message conventions observed in the corpus's real Wayland-family client
// code (other_examples' niri_types.go and dominikh-go-libwayland's
// wayland.go), not any one wire protocol's actual opcodes.
package transport

// WindowID, OutputID, SeatID, BindingID and NodeID are opaque identifiers
// assigned by the compositor. Once destroyed, an id behaves as "not
// found" in every query (spec.md §9) — this package never hands out a
// zero value as "valid", so the zero value of each is reserved as
// "unset".
type (
	WindowID  uint32
	OutputID  uint32
	SeatID    uint32
	BindingID uint32
	NodeID    uint32
)

// Edges selects which sides of a window a border/tiled request applies to.
type Edges uint8

const EdgeNone Edges = 0

const (
	EdgeLeft Edges = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

const EdgeAll = EdgeLeft | EdgeRight | EdgeTop | EdgeBottom

// Color is a premultiplied RGBA color as produced by ParseColor (spec.md
// §4.7); components are already scaled to 32-bit and alpha-premultiplied.
type Color struct {
	R, G, B, A uint32
}

// Transform is an output's rotation/flip, as reported/configured per
// spec.md §4.9.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// Requester is the set of outbound protocol requests the core emits.
// Implementations must only be driven within a manage/render transaction
// or as the direct response to a user action (spec.md §9 "Transactional
// emission").
type Requester interface {
	// Window-manager-level requests.
	ManageFinish()
	RenderFinish()
	ManageDirty()

	// Window requests.
	Show(w WindowID)
	Hide(w WindowID)
	CloseWindow(w WindowID)
	ProposeDimensions(w WindowID, width, height int)
	SetTiled(w WindowID, edges Edges)
	SetBorders(w WindowID, edges Edges, width int, color Color)
	Fullscreen(w WindowID, output OutputID)
	ExitFullscreen(w WindowID)
	InformFullscreen(w WindowID)
	InformNotFullscreen(w WindowID)
	GetNode(w WindowID) NodeID

	// Node requests.
	SetPosition(n NodeID, x, y int)
	PlaceTop(n NodeID)

	// Seat requests.
	FocusWindow(s SeatID, w WindowID)
	ClearFocus(s SeatID)
	PointerWarp(s SeatID, x, y int)

	// Binding requests.
	NewBinding(modMask uint32, keysym string) BindingID
	EnableBinding(b BindingID)
	DestroyBinding(b BindingID)

	// Layer-shell default anchor (spec.md §4.7 step 10).
	SetDefaultAnchor(output OutputID)

	// Output-manager requests (spec.md §4.9).
	NewOutputConfiguration() OutputConfiguration
}

// OutputConfiguration is the atomic output-manager transaction object of
// spec.md §4.9 step 5.
type OutputConfiguration interface {
	SetHead(output OutputID, x, y int, scale float64, transform Transform, modeW, modeH int, modeRefreshMHz int)
	Apply(serial uint32) error
}

// Transport bundles outbound requests with the ability to poll/consume a
// readiness-driven fd, as used by the event multiplexer (C10, spec.md
// §4.10).
type Transport interface {
	Requester

	// FD returns the transport's underlying file descriptor for poll(2).
	FD() int
	// Dispatch drains queued events and delivers them through the
	// Listener registered via SetListener. It must not block.
	Dispatch() error
	// Flush writes any buffered outgoing requests to the wire.
	Flush() error
	// PrepareRead returns false if events are already queued locally
	// (spec.md §4.10 step 3): the caller must Dispatch and retry instead
	// of blocking in poll.
	PrepareRead() bool
	// CancelRead releases a held read-guard without consuming (step 5).
	CancelRead()

	SetListener(Listener)
}

// Listener receives compositor events (spec.md §6). Implemented by
// app.App, which hands each event to the core state object or one of its
// collaborators; transport fans events out to exactly one listener.
type Listener interface {
	OnSeat(SeatID)
	OnOutputHead(OutputID, HeadInfo)
	OnOutputDone(serial uint32)
	OnOutputRemoved(OutputID)
	OnWindow(WindowID)
	OnAppID(id WindowID, appID string)
	OnWindowClosed(WindowID)
	OnDimensions(id WindowID, width, height int)
	OnManageStart()
	OnRenderStart()
	OnBindingPressed(BindingID)
	OnBarReservation(BarReservation)
}

// HeadInfo is the data reported for an output head (spec.md §3, §4.9).
type HeadInfo struct {
	Name    string
	X, Y    int
	W, H    int // physical/full size prior to scale & transform
	Modes   []Mode
	Scale   float64
}

// Mode is a single output mode candidate.
type Mode struct {
	W, H       int
	RefreshMHz int
	Preferred  bool
}

// BarReservation is a layer-shell exclusive-zone reservation event used
// to compute a monitor's usable_area (spec.md §4.2).
type BarReservation struct {
	// CenterX/CenterY locate which monitor the reservation belongs to.
	CenterX, CenterY int
	// Margins reserved on each edge, in logical pixels.
	Top, Bottom, Left, Right int
}
