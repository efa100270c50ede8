package store

// ReplyNode is a reply with its recursively materialized children.
type ReplyNode struct {
	Reply
	Children []*ReplyNode `json:"child_replies"`
}

// MaxTreeDepth caps the materialized nesting. Replies deeper than this attach
// flat under their cap-level ancestor instead of growing the structure further.
const MaxTreeDepth = 64

// BuildTree assembles the reply forest by grouping children by parent id in
// one pass over the input, never by recursive traversal. Input must be sorted
// created_at ascending; sibling order is preserved. Replies whose parent is
// absent from the input are treated as top-level.
func BuildTree(replies []Reply) []*ReplyNode {
	nodes := make(map[string]*ReplyNode, len(replies))
	children := make(map[string][]string, len(replies))
	rootIDs := make([]string, 0, len(replies))

	for _, r := range replies {
		nodes[r.ID] = &ReplyNode{Reply: r, Children: []*ReplyNode{}}
	}
	for _, r := range replies {
		if r.ParentReplyID != nil && nodes[*r.ParentReplyID] != nil {
			children[*r.ParentReplyID] = append(children[*r.ParentReplyID], r.ID)
		} else {
			rootIDs = append(rootIDs, r.ID)
		}
	}

	// Iterative breadth-first assembly; attach is the node adopting the
	// children of id once depth passes the cap.
	type frame struct {
		id     string
		attach *ReplyNode
		depth  int
	}

	roots := make([]*ReplyNode, 0, len(rootIDs))
	queue := make([]frame, 0, len(rootIDs))
	for _, id := range rootIDs {
		roots = append(roots, nodes[id])
		queue = append(queue, frame{id: id, attach: nodes[id]})
	}

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, cid := range children[f.id] {
			child := nodes[cid]
			f.attach.Children = append(f.attach.Children, child)
			next := frame{id: cid, attach: child, depth: f.depth + 1}
			if next.depth >= MaxTreeDepth {
				next.attach = f.attach
			}
			queue = append(queue, next)
		}
	}
	return roots
}
