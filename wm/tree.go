// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: wm/tree.go
// Summary: Binary space-partitioning tree (C1): a parent-pointer-free sum
// type rebuilt by returning new roots from every mutation. spec.md §9
// explicitly redesigns the teacher's parent-pointered, N-ary pane tree
// into this shape; see DESIGN.md's wm/tree.go entry.

package wm

import (
	"github.com/cap153/rrwm/geom"
	"github.com/cap153/rrwm/transport"
)

// Split selects the axis an internal node partitions along.
type Split int

const (
	SplitH Split = iota // partitions along height (top/bottom)
	SplitV              // partitions along width (left/right)
)

// Direction is a navigation/placement direction.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// Opposite returns the reverse of d.
func (d Direction) Opposite() Direction {
	switch d {
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	case DirUp:
		return DirDown
	default:
		return DirUp
	}
}

// Horizontal reports whether d moves along the X axis.
func (d Direction) Horizontal() bool {
	return d == DirLeft || d == DirRight
}

// TreeNode is either a leaf (holds a window) or a container with two
// children. Never both, never neither — IsLeaf is authoritative.
type TreeNode struct {
	Window *transport.WindowID

	Split Split
	Ratio float64
	Left  *TreeNode
	Right *TreeNode
}

// IsLeaf reports whether n is a leaf node.
func (n *TreeNode) IsLeaf() bool {
	return n != nil && n.Left == nil && n.Right == nil
}

// NewLeaf returns a new leaf node holding w.
func NewLeaf(w transport.WindowID) *TreeNode {
	id := w
	return &TreeNode{Window: &id}
}

// NewContainer returns a new internal node with the given split/ratio.
func NewContainer(split Split, ratio float64, left, right *TreeNode) *TreeNode {
	return &TreeNode{Split: split, Ratio: ratio, Left: left, Right: right}
}

// LeafRect is a rendered leaf: the window it holds and the rectangle it
// was assigned (spec.md §4.1).
type LeafRect struct {
	Window transport.WindowID
	Rect   geom.Rect
}

// Render walks the tree over rectangle r, producing one LeafRect per
// leaf, per the recursive definition in spec.md §4.1.
func Render(n *TreeNode, r geom.Rect) []LeafRect {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []LeafRect{{Window: *n.Window, Rect: r}}
	}
	if n.Split == SplitV {
		leftW := int(float64(r.W) * n.Ratio)
		left := geom.Rect{X: r.X, Y: r.Y, W: leftW, H: r.H}
		right := geom.Rect{X: r.X + leftW, Y: r.Y, W: r.W - leftW, H: r.H}
		return append(Render(n.Left, left), Render(n.Right, right)...)
	}
	topH := int(float64(r.H) * n.Ratio)
	top := geom.Rect{X: r.X, Y: r.Y, W: r.W, H: topH}
	bottom := geom.Rect{X: r.X, Y: r.Y + topH, W: r.W, H: r.H - topH}
	return append(Render(n.Left, top), Render(n.Right, bottom)...)
}

// InsertAt locates the leaf holding target and replaces it with a
// container whose left child is the original leaf and right child is a
// new leaf holding newWindow (spec.md §4.1). Returns the (possibly
// unchanged) root and whether the insertion happened. If it returns
// false, the caller must wrap the whole tree itself (see WrapRoot).
func InsertAt(root *TreeNode, target, newWindow transport.WindowID, split Split) (*TreeNode, bool) {
	if root == nil {
		return nil, false
	}
	if root.IsLeaf() {
		if *root.Window == target {
			return NewContainer(split, 0.5, NewLeaf(target), NewLeaf(newWindow)), true
		}
		return root, false
	}
	if left, ok := InsertAt(root.Left, target, newWindow, split); ok {
		root.Left = left
		return root, true
	}
	if right, ok := InsertAt(root.Right, target, newWindow, split); ok {
		root.Right = right
		return root, true
	}
	return root, false
}

// WrapRoot builds Container{split, 0.5, old, new} or Container{split, 0.5,
// new, old} depending on newFirst, for the cases spec.md §4.1/§4.5/§4.6
// call for an unconditional wrap (float→tile transition, cross-tag
// Leftmost/Topmost vs Rightmost/Bottommost insertion).
func WrapRoot(old *TreeNode, newWindow transport.WindowID, split Split, newFirst bool) *TreeNode {
	leaf := NewLeaf(newWindow)
	if old == nil {
		return leaf
	}
	if newFirst {
		return NewContainer(split, 0.5, leaf, old)
	}
	return NewContainer(split, 0.5, old, leaf)
}

// RemoveAt recursively rebuilds the subtree with target's leaf excised;
// when a container's child becomes empty, the surviving child replaces
// it so the tree stays minimal (spec.md §4.1).
func RemoveAt(root *TreeNode, target transport.WindowID) *TreeNode {
	if root == nil {
		return nil
	}
	if root.IsLeaf() {
		if *root.Window == target {
			return nil
		}
		return root
	}
	root.Left = RemoveAt(root.Left, target)
	root.Right = RemoveAt(root.Right, target)
	switch {
	case root.Left == nil && root.Right == nil:
		return nil
	case root.Left == nil:
		return root.Right
	case root.Right == nil:
		return root.Left
	default:
		return root
	}
}

// SwapWindows exchanges the window ids held by the two leaves matching a
// and b in a single traversal. If either id is absent, the tree is
// unchanged. Positions/ratios are preserved (spec.md §4.1, law L1).
func SwapWindows(tree *TreeNode, a, b transport.WindowID) {
	na := findLeaf(tree, a)
	nb := findLeaf(tree, b)
	if na == nil || nb == nil {
		return
	}
	*na.Window, *nb.Window = *nb.Window, *na.Window
}

func findLeaf(n *TreeNode, id transport.WindowID) *TreeNode {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		if *n.Window == id {
			return n
		}
		return nil
	}
	if f := findLeaf(n.Left, id); f != nil {
		return f
	}
	return findLeaf(n.Right, id)
}

// Contains reports whether id appears anywhere in the tree.
func Contains(n *TreeNode, id transport.WindowID) bool {
	return findLeaf(n, id) != nil
}

// FindEdge returns the id of the physical-edge window for dir (spec.md
// §4.1). It returns false for an empty tree.
func FindEdge(n *TreeNode, dir Direction) (transport.WindowID, bool) {
	if n == nil {
		return 0, false
	}
	for !n.IsLeaf() {
		if edgeDescendsLeft(n.Split, dir) {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return *n.Window, true
}

// edgeDescendsLeft implements the rule of spec.md §4.1: descend left for
// {V,Left}/{H,Up}, right for {V,Right}/{H,Down}; for an orthogonal
// combination, descend right by convention.
func edgeDescendsLeft(split Split, dir Direction) bool {
	switch {
	case split == SplitV && dir == DirLeft:
		return true
	case split == SplitH && dir == DirUp:
		return true
	case split == SplitV && dir == DirRight:
		return false
	case split == SplitH && dir == DirDown:
		return false
	default:
		return false
	}
}

// Leaves returns all window ids in the tree, in left-to-right traversal
// order.
func Leaves(n *TreeNode) []transport.WindowID {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []transport.WindowID{*n.Window}
	}
	return append(Leaves(n.Left), Leaves(n.Right)...)
}

// CountLeaves returns the number of windows tiled in the tree.
func CountLeaves(n *TreeNode) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	return CountLeaves(n.Left) + CountLeaves(n.Right)
}
