package movabletree

import (
	"container/heap"
	"sort"
)

// edgeRecord is one historical claim: "at some point, this child was
// parented under some NodeID with this counter." Every edge ever asserted
// remains in the edge set forever; merge is simply the union of two edge
// sets plus a last-writer-wins tiebreak per (child, parent) pair.
type edgeRecord struct {
	Counter uint32
	Lamport uint32
	Peer    uint64
}

// nodeE is one node's state in Algorithm-E: the full history of parents it
// has ever been assigned (edges), plus the cached result of the last
// recompute pass (parent, children).
type nodeE struct {
	id       NodeID
	parent   *NodeID
	children []NodeID
	edges    map[NodeID]edgeRecord
}

// AlgorithmE is the edge-set CRDT described in spec.md §4.2: every
// historical parent-edge per node is retained, and cycles introduced by
// concurrent moves are resolved deterministically by recomputing the
// parent/child relationship from the edge set after every remote
// application.
type AlgorithmE struct {
	nodes map[NodeID]*nodeE
}

// NewAlgorithmE constructs an empty Algorithm-E replica state containing
// only the root node.
func NewAlgorithmE() *AlgorithmE {
	return &AlgorithmE{
		nodes: map[NodeID]*nodeE{
			RootID: {id: RootID, edges: map[NodeID]edgeRecord{}},
		},
	}
}

// largestEdge returns the edge with the greatest (counter, parent NodeID)
// pair: counter is compared first, parent NodeID breaks ties. This is the
// node's "most recent" parent choice given everything it has ever claimed.
func (n *nodeE) largestEdge() (NodeID, bool) {
	var best NodeID
	var bestCounter uint32
	found := false
	for id, rec := range n.edges {
		if !found || rec.Counter > bestCounter || (rec.Counter == bestCounter && id.Greater(best)) {
			best, bestCounter, found = id, rec.Counter, true
		}
	}
	return best, found
}

func (n *nodeE) maxCounter() int64 {
	max := int64(-1)
	for _, rec := range n.edges {
		if int64(rec.Counter) > max {
			max = int64(rec.Counter)
		}
	}
	return max
}

// upsertEdge records that child was parented under parent with the given
// counter, stamped by (lamport, peer). When an edge already exists for this
// exact (child, parent) pair, the last-writer-wins rule from spec.md §4.2
// keeps whichever record has the larger (lamport, peer) pair.
func (a *AlgorithmE) upsertEdge(child, parent NodeID, counter, lamport uint32, peer uint64) {
	n := a.nodes[child]
	existing, ok := n.edges[parent]
	if !ok || lamport > existing.Lamport || (lamport == existing.Lamport && peer > existing.Peer) {
		n.edges[parent] = edgeRecord{Counter: counter, Lamport: lamport, Peer: peer}
	}
}

func (a *AlgorithmE) ensureNode(id NodeID) *nodeE {
	n, ok := a.nodes[id]
	if !ok {
		n = &nodeE{id: id, edges: map[NodeID]edgeRecord{}}
		a.nodes[id] = n
	}
	return n
}

func (a *AlgorithmE) create(id ID, parent NodeID) NodeID {
	nid := id.NodeID()
	n := a.ensureNode(nid)
	a.ensureNode(parent)
	// Creation always wins: it is the first thing a node ever sees, so
	// the edge is written unconditionally rather than tie-broken.
	n.edges[parent] = edgeRecord{Counter: 0, Lamport: id.Lamport, Peer: id.Peer}
	return nid
}

// ensureNodeIsRooted walks upward from start along the current (cached)
// parent pointers. At every step where the node's current parent link is
// not its largestEdge (i.e. the node is floating or mis-parented relative
// to its own edge history), it republishes that current link as a fresh
// edit so that a single outgoing move batch carries enough information for
// a disagreeing peer to converge in one round. This is root-path
// amplification, spec.md §4.2.
func (a *AlgorithmE) ensureNodeIsRooted(start *NodeID, edits *[]editPair) {
	node := start
	for node != nil {
		child := a.nodes[*node]
		parent := child.parent
		if parent == nil {
			return
		}
		edge, hasEdge := child.largestEdge()
		if !hasEdge || edge != *parent {
			*edits = append(*edits, editPair{child: *node, parent: *parent})
		}
		node = parent
	}
}

type editPair struct {
	child  NodeID
	parent NodeID
}

// localMove performs root-path amplification plus the actual requested
// edit, bumping each touched child's edge counter past whatever it has
// seen before, then recomputes the tree once. It returns the full batch of
// ops this edit produced — every amplification republish followed by the
// canonical target->parent move, each stamped with this op's lamport/peer
// and its own freshly assigned counter — so that the caller can ship every
// one of them to peers. A Move op expanding into multiple outgoing ops is
// intentional (spec.md §4.2, §9): without shipping the republishes, a peer
// that only receives the canonical move can recompute a different tree
// shape than the originating replica when root-path nodes were floating or
// mis-parented relative to their own edge history.
func (a *AlgorithmE) localMove(id ID, target, parent NodeID) []Op {
	var edits []editPair
	a.ensureNodeIsRooted(a.nodes[target].parent, &edits)
	a.ensureNodeIsRooted(&parent, &edits)
	edits = append(edits, editPair{child: target, parent: parent})

	ops := make([]Op, 0, len(edits))
	for _, e := range edits {
		n := a.ensureNode(e.child)
		counter := uint32(n.maxCounter() + 1)
		n.edges[e.parent] = edgeRecord{Counter: counter, Lamport: id.Lamport, Peer: id.Peer}
		ops = append(ops, Op{
			ID:      id,
			Kind:    OpMove,
			Target:  e.child,
			Parent:  e.parent,
			Counter: &counter,
		})
	}
	a.recomputeParentChildren()
	return ops
}

// Apply implements Algorithm.
func (a *AlgorithmE) Apply(op Op, local bool) []Op {
	switch op.Kind {
	case OpCreate:
		a.create(op.ID, op.Parent)
		a.recomputeParentChildren()
		return []Op{op}
	case OpMove:
		if local {
			return a.localMove(op.ID, op.Target, op.Parent)
		}
		counter := uint32(0)
		if op.Counter != nil {
			counter = *op.Counter
		}
		a.ensureNode(op.Target)
		a.upsertEdge(op.Target, op.Parent, counter, op.ID.Lamport, op.ID.Peer)
		a.recomputeParentChildren()
		return []Op{op}
	default:
		return []Op{op}
	}
}

// Merge implements Algorithm: every op is applied without an intermediate
// recompute, then recomputeParentChildren runs exactly once for the batch,
// per spec.md §4.2.
func (a *AlgorithmE) Merge(ops []Op) {
	for _, op := range ops {
		switch op.Kind {
		case OpCreate:
			a.create(op.ID, op.Parent)
		case OpMove:
			counter := uint32(0)
			if op.Counter != nil {
				counter = *op.Counter
			}
			a.ensureNode(op.Target)
			a.upsertEdge(op.Target, op.Parent, counter, op.ID.Lamport, op.ID.Peer)
		}
	}
	a.recomputeParentChildren()
}

// Nodes implements Algorithm.
func (a *AlgorithmE) Nodes() []NodeID {
	out := make([]NodeID, 0, len(a.nodes))
	for id := range a.nodes {
		out = append(out, id)
	}
	return out
}

// Parent implements Algorithm.
func (a *AlgorithmE) Parent(node NodeID) (NodeID, bool) {
	n, ok := a.nodes[node]
	if !ok || n.parent == nil {
		return NodeID{}, false
	}
	return *n.parent, true
}

// IsAncestorOf implements Algorithm using Floyd's tortoise/hare so that a
// transient in-memory cycle produced mid-recompute cannot loop forever.
func (a *AlgorithmE) IsAncestorOf(ancestor, node NodeID) bool {
	if ancestor == node {
		return true
	}
	slow, fast := node, node
	for {
		np, ok := a.step(fast)
		if !ok {
			return false
		}
		if np == ancestor {
			return true
		}
		fast = np
		np2, ok := a.step(fast)
		if !ok {
			return false
		}
		if np2 == ancestor {
			return true
		}
		fast = np2

		sp, ok := a.step(slow)
		if !ok {
			return false
		}
		slow = sp
		if slow == fast {
			return false
		}
	}
}

func (a *AlgorithmE) step(node NodeID) (NodeID, bool) {
	n, ok := a.nodes[node]
	if !ok || n.parent == nil {
		return NodeID{}, false
	}
	return *n.parent, true
}

// recomputeParentChildren is the core of Algorithm-E: it re-derives every
// node's effective parent from its edge history, finds components that
// cannot reach RootID, and deterministically reattaches them. See
// spec.md §4.2.
func (a *AlgorithmE) recomputeParentChildren() {
	for _, n := range a.nodes {
		if edge, ok := n.largestEdge(); ok {
			e := edge
			n.parent = &e
		} else {
			n.parent = nil
		}
		n.children = nil
	}

	nonRooted := a.findNonRooted()
	if len(nonRooted) > 0 {
		a.reattach(nonRooted)
	}

	for id, n := range a.nodes {
		if n.parent != nil {
			parent := a.nodes[*n.parent]
			parent.children = append(parent.children, id)
		}
	}
	for _, n := range a.nodes {
		sortNodeIDs(n.children)
	}
}

// findNonRooted collects every node that cannot reach RootID by following
// cached parent pointers. Each node's ancestor chain is walked in full to
// test rootedness; only the walk that marks a floating chain stops early at
// a node already marked.
func (a *AlgorithmE) findNonRooted() map[NodeID]bool {
	nonRooted := map[NodeID]bool{}
	for id, n := range a.nodes {
		if a.IsAncestorOf(RootID, id) {
			continue
		}
		cur := n.id
		for {
			if nonRooted[cur] {
				break
			}
			nonRooted[cur] = true
			node := a.nodes[cur]
			if node.parent == nil {
				break
			}
			cur = *node.parent
		}
	}
	return nonRooted
}

// reattach deterministically roots every node in nonRooted. Edges whose
// parent is already rooted are "ready" and go straight into a max-priority
// queue ordered by (counter desc, parent NodeID desc, child NodeID desc);
// edges whose parent is itself floating are "deferred" until that parent
// is reattached. This is spec.md §4.2 step 3.
func (a *AlgorithmE) reattach(nonRooted map[NodeID]bool) {
	deferred := map[NodeID][]pqItem{}
	ready := &edgeHeap{}
	heap.Init(ready)

	for child := range nonRooted {
		for parent, rec := range a.nodes[child].edges {
			item := pqItem{child: child, parent: parent, counter: rec.Counter}
			if nonRooted[parent] {
				deferred[parent] = append(deferred[parent], item)
			} else {
				heap.Push(ready, item)
			}
		}
	}

	for ready.Len() > 0 {
		top := heap.Pop(ready).(pqItem)
		if !nonRooted[top.child] {
			continue
		}
		parent := top.parent
		a.nodes[top.child].parent = &parent
		delete(nonRooted, top.child)

		for _, item := range deferred[top.child] {
			heap.Push(ready, item)
		}
		delete(deferred, top.child)
	}
	// Any node still in nonRooted at this point is part of a pure cycle
	// with no external edges; it keeps the parent largestEdge already
	// assigned (spec.md §4.2 step 4). Render surfaces these as separate
	// top-level components instead of silently dropping them.
}

// Render implements Algorithm. It builds the hierarchical view from RootID
// down through the children computed by the last recompute pass, then
// appends any nodes left in a pure floating cycle (spec.md §4.2 step 4,
// an open policy question this implementation resolves by surfacing
// orphans rather than dropping them) as extra top-level components,
// one per connected component, in ascending NodeID order of each
// component's lowest member. A visited-set guard makes the walk safe even
// though a floating component's child pointers form a cycle.
func (a *AlgorithmE) Render() TreeNode {
	visited := map[NodeID]bool{}
	root := a.buildTreeNode(RootID, visited)
	root.Children = append(root.Children, a.floatingComponents(visited)...)
	return root
}

func (a *AlgorithmE) buildTreeNode(id NodeID, visited map[NodeID]bool) TreeNode {
	visited[id] = true
	n := a.nodes[id]
	children := make([]TreeNode, 0, len(n.children))
	for _, c := range n.children {
		if visited[c] {
			continue
		}
		children = append(children, a.buildTreeNode(c, visited))
	}
	return TreeNode{ID: id, Children: children}
}

func (a *AlgorithmE) floatingComponents(visited map[NodeID]bool) []TreeNode {
	ids := make([]NodeID, 0)
	for id := range a.nodes {
		if !visited[id] {
			ids = append(ids, id)
		}
	}
	sortNodeIDs(ids)

	var out []TreeNode
	for _, id := range ids {
		if visited[id] {
			continue
		}
		out = append(out, a.buildTreeNode(id, visited))
	}
	return out
}

// pqItem is one reattachment candidate edge.
type pqItem struct {
	child   NodeID
	parent  NodeID
	counter uint32
}

func (a pqItem) higherPriority(b pqItem) bool {
	if a.counter != b.counter {
		return a.counter > b.counter
	}
	if a.parent != b.parent {
		return a.parent.Greater(b.parent)
	}
	return a.child.Greater(b.child)
}

// edgeHeap is a container/heap max-heap over pqItem, ordered by
// (counter, parent NodeID, child NodeID) all descending, so that Pop
// always returns the highest-priority ready edge: this mirrors
// original_source/src/evan.rs's BinaryHeap<PQItem>, whose derived Ord
// compares all three fields ascending and whose max-heap pop therefore
// surfaces the greatest of each, matching spec.md §4.2 step 3.
type edgeHeap []pqItem

func (h edgeHeap) Len() int            { return len(h) }
func (h edgeHeap) Less(i, j int) bool  { return h[i].higherPriority(h[j]) }
func (h edgeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *edgeHeap) Push(x interface{}) { *h = append(*h, x.(pqItem)) }
func (h *edgeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func sortNodeIDs(ids []NodeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}
