package movabletree

// Algorithm is the capability set a convergence strategy must provide for
// the Replica facade to drive it. Algorithm-E and Algorithm-M are the two
// concrete implementations in this package; either could also be expressed
// as a generic type parameter, but a shared interface keeps Replica a
// single concrete type that is easy to construct and inspect.
type Algorithm interface {
	// Apply integrates a single operation into the algorithm's state and
	// returns the batch of Ops that should be recorded in the replica's
	// local log and shipped to peers. For a Create or a remote Move this
	// is always a single-element slice holding the input op unchanged;
	// for a local Move under Algorithm-E it is the root-path
	// amplification edits (spec.md §4.2, §9) followed by the canonical
	// move, each with its own Counter populated and stamped with this
	// op's lamport/peer.
	Apply(op Op, local bool) []Op

	// Merge integrates a batch of operations not produced locally. Unlike
	// repeated calls to Apply(op, false), Merge performs any
	// once-per-batch bookkeeping (Algorithm-E's recompute pass,
	// Algorithm-M's undo-splice-redo) exactly once for the whole batch.
	Merge(ops []Op)

	// Nodes returns every node the algorithm knows about, including
	// RootID.
	Nodes() []NodeID

	// Parent returns the current parent of node, and false if node is
	// unknown or is RootID (which has no parent).
	Parent(node NodeID) (NodeID, bool)

	// IsAncestorOf reports whether ancestor is node itself or is found by
	// repeatedly following node's parent links.
	IsAncestorOf(ancestor, node NodeID) bool

	// Render produces the hierarchical view of the current state, rooted
	// at RootID.
	Render() TreeNode
}
