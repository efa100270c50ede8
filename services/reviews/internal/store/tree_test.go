package store

import (
	"fmt"
	"testing"
	"time"
)

func makeReply(id string, parent *string, at time.Time) Reply {
	return Reply{ID: id, ReviewID: "rev-1", UserID: "user", Comment: id, ParentReplyID: parent, CreatedAt: at}
}

func TestBuildTree_Shape(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a, b := "a", "b"

	replies := []Reply{
		makeReply("a", nil, base),
		makeReply("b", &a, base.Add(time.Minute)),
		makeReply("c", &a, base.Add(2*time.Minute)),
		makeReply("d", &b, base.Add(3*time.Minute)),
		makeReply("e", nil, base.Add(4*time.Minute)),
	}

	roots := BuildTree(replies)
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != "a" || roots[1].ID != "e" {
		t.Fatalf("wrong roots: %s %s", roots[0].ID, roots[1].ID)
	}
	if len(roots[0].Children) != 2 {
		t.Fatalf("expected 2 children of a, got %d", len(roots[0].Children))
	}
	if roots[0].Children[0].ID != "b" || roots[0].Children[1].ID != "c" {
		t.Fatal("expected siblings oldest first")
	}
	if len(roots[0].Children[0].Children) != 1 || roots[0].Children[0].Children[0].ID != "d" {
		t.Fatal("expected d under b")
	}
}

func TestBuildTree_OrphanBecomesRoot(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ghost := "ghost"

	roots := BuildTree([]Reply{makeReply("x", &ghost, base)})
	if len(roots) != 1 || roots[0].ID != "x" {
		t.Fatal("expected orphan promoted to root")
	}
}

func TestBuildTree_Empty(t *testing.T) {
	roots := BuildTree(nil)
	if len(roots) != 0 {
		t.Fatalf("expected no roots, got %d", len(roots))
	}
}

func TestBuildTree_DepthCapFlattens(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// A single chain twice as deep as the cap.
	total := 2 * MaxTreeDepth
	replies := make([]Reply, 0, total)
	var parent *string
	for i := 0; i < total; i++ {
		id := fmt.Sprintf("n%03d", i)
		replies = append(replies, makeReply(id, parent, base.Add(time.Duration(i)*time.Second)))
		p := id
		parent = &p
	}

	roots := BuildTree(replies)
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}

	// Walk to the deepest node and count levels; every reply must still be
	// present, just flattened past the cap.
	depth := 0
	seen := 0
	var walk func(n *ReplyNode, d int)
	walk = func(n *ReplyNode, d int) {
		seen++
		if d > depth {
			depth = d
		}
		for _, c := range n.Children {
			walk(c, d+1)
		}
	}
	walk(roots[0], 0)

	if seen != total {
		t.Fatalf("expected %d nodes in tree, got %d", total, seen)
	}
	if depth > MaxTreeDepth {
		t.Fatalf("expected depth capped at %d, got %d", MaxTreeDepth, depth)
	}
}
