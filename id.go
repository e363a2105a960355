// Package movabletree implements a replicated movable-tree CRDT: a tree
// data structure that lets multiple peers concurrently create nodes and
// re-parent (move) them, then merge each other's operation histories with a
// guarantee of strong eventual consistency.
//
// Two independent convergence algorithms are offered behind one Replica
// facade: AlgorithmE, an edge-set CRDT that deterministically breaks
// cycles after merge, and AlgorithmM, an operation-log CRDT that replays a
// totally-ordered sequence of operations. Both converge to byte-identical
// tree shapes given the same set of observed operations.
package movabletree

import (
	"fmt"
	"math"
)

// ID is an operation stamp: a Lamport timestamp paired with the peer that
// issued it. The total order over IDs is lexicographic on (Lamport, Peer).
// For a given peer, Lamport is strictly increasing; across peers, pairs are
// unique by construction.
type ID struct {
	Lamport uint32
	Peer    uint64
}

// Less reports whether id sorts strictly before other under the
// (Lamport, Peer) total order.
func (id ID) Less(other ID) bool {
	if id.Lamport != other.Lamport {
		return id.Lamport < other.Lamport
	}
	return id.Peer < other.Peer
}

// NodeID names a node by the ID of the Create operation that introduced it.
// It has the same shape as ID but is kept as a distinct type so that node
// identities and operation stamps are never confused at compile time.
type NodeID struct {
	Lamport uint32
	Peer    uint64
}

// Less reports whether id sorts strictly before other under the
// (Lamport, Peer) total order. Used to order siblings deterministically
// when rendering and to break ties in Algorithm-E's edge comparisons.
func (id NodeID) Less(other NodeID) bool {
	if id.Lamport != other.Lamport {
		return id.Lamport < other.Lamport
	}
	return id.Peer < other.Peer
}

// Greater reports whether id sorts strictly after other under the
// (Lamport, Peer) total order.
func (id NodeID) Greater(other NodeID) bool {
	return other.Less(id)
}

// NodeID converts an operation stamp into the NodeID of the node that
// operation created.
func (id ID) NodeID() NodeID {
	return NodeID{Lamport: id.Lamport, Peer: id.Peer}
}

// RootID is the implicit ancestor of every tree. It is never created by a
// Create operation and always has no parent.
var RootID = NodeID{Lamport: math.MaxUint32, Peer: math.MaxUint64}

// String renders a NodeID the way spec.md §4.4 mandates: the literal
// "ROOT" for RootID, and "Node[ <lamport>@<peer> ]" for everything else.
func (id NodeID) String() string {
	if id == RootID {
		return "ROOT"
	}
	return fmt.Sprintf("Node[ %d@%d ]", id.Lamport, id.Peer)
}

// OpKind distinguishes the two operation variants a replica can produce.
type OpKind uint8

const (
	// OpCreate introduces a node with NodeID equal to the op's ID and
	// makes Parent its initial parent.
	OpCreate OpKind = iota
	// OpMove sets Target's parent to Parent. Counter is populated by
	// Algorithm-E when it owns the edge record; Algorithm-M never reads
	// or writes it.
	OpMove
)

// Op is a single stamped operation: a Create or a Move. Fields not used by
// a given Kind are left at their zero value.
type Op struct {
	ID      ID
	Kind    OpKind
	Parent  NodeID
	Target  NodeID  // only meaningful for OpMove
	Counter *uint32 // only meaningful for OpMove, and only under Algorithm-E
}

// TreeNode is the hierarchical view of a parent map produced by Render,
// rooted at whichever node has no parent. Children are sorted by
// (Lamport, Peer) ascending, per spec.md §4.4, so two replicas holding an
// identical parent map always produce an identical TreeNode.
type TreeNode struct {
	ID       NodeID
	Children []TreeNode
}

