// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package wm

import (
	"testing"

	"github.com/cap153/rrwm/geom"
)

func TestRenderSplitsWidth(t *testing.T) {
	root := NewContainer(SplitV, 0.5, NewLeaf(1), NewLeaf(2))
	leaves := Render(root, geom.Rect{X: 0, Y: 0, W: 100, H: 50})
	if len(leaves) != 2 {
		t.Fatalf("want 2 leaves, got %d", len(leaves))
	}
	if leaves[0].Rect.W != 50 || leaves[1].Rect.W != 50 {
		t.Fatalf("want even 50/50 split, got %+v %+v", leaves[0].Rect, leaves[1].Rect)
	}
	if leaves[1].Rect.X != 50 {
		t.Fatalf("want right leaf at x=50, got %d", leaves[1].Rect.X)
	}
}

func TestInsertAtWrapsLeaf(t *testing.T) {
	root := NewLeaf(1)
	root, ok := InsertAt(root, 1, 2, SplitV)
	if !ok {
		t.Fatal("insert_at on a matching leaf must succeed")
	}
	if root.IsLeaf() {
		t.Fatal("root should now be a container")
	}
	if *root.Left.Window != 1 || *root.Right.Window != 2 {
		t.Fatalf("want original leaf left, new leaf right, got %+v", root)
	}
}

func TestInsertAtMissingTargetFails(t *testing.T) {
	root := NewLeaf(1)
	_, ok := InsertAt(root, 99, 2, SplitV)
	if ok {
		t.Fatal("insert_at on a missing target must report false")
	}
}

func TestRemoveAtPromotesSibling(t *testing.T) {
	root := NewContainer(SplitV, 0.5, NewLeaf(1), NewLeaf(2))
	root = RemoveAt(root, 1)
	if !root.IsLeaf() || *root.Window != 2 {
		t.Fatalf("want surviving sibling promoted to root, got %+v", root)
	}
}

func TestSwapWindowsPreservesPositions(t *testing.T) {
	root := NewContainer(SplitV, 0.5, NewLeaf(1), NewLeaf(2))
	SwapWindows(root, 1, 2)
	if *root.Left.Window != 2 || *root.Right.Window != 1 {
		t.Fatalf("want ids swapped in place, got %+v", root)
	}
}

func TestFindEdge(t *testing.T) {
	root := NewContainer(SplitV, 0.5, NewLeaf(1), NewLeaf(2))
	if id, ok := FindEdge(root, DirLeft); !ok || id != 1 {
		t.Fatalf("want leftmost=1, got %v %v", id, ok)
	}
	if id, ok := FindEdge(root, DirRight); !ok || id != 2 {
		t.Fatalf("want rightmost=2, got %v %v", id, ok)
	}
}

func TestCountLeaves(t *testing.T) {
	root := NewContainer(SplitH, 0.5, NewLeaf(1), NewContainer(SplitV, 0.5, NewLeaf(2), NewLeaf(3)))
	if n := CountLeaves(root); n != 3 {
		t.Fatalf("want 3 leaves, got %d", n)
	}
}
