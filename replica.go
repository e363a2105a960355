package movabletree

import "github.com/cshekharsharma/movabletree/peerid"

// Replica is the uniform facade described in spec.md §4.1: it owns a peer
// ID, a Lamport clock, and a per-peer log of every operation it has
// locally produced or absorbed from a merge, and drives a single
// Algorithm (Algorithm-E or Algorithm-M) to maintain a converged parent
// map.
type Replica struct {
	algorithm   Algorithm
	peer        uint64
	ops         map[uint64][]Op
	nextLamport uint32
}

// NewReplica constructs a fresh replica for the given peer, empty of state,
// driving the supplied Algorithm.
func NewReplica(peer uint64, algorithm Algorithm) *Replica {
	return &Replica{
		algorithm: algorithm,
		peer:      peer,
		ops:       map[uint64][]Op{},
	}
}

// NewReplicaE constructs a replica backed by Algorithm-E.
func NewReplicaE(peer uint64) *Replica {
	return NewReplica(peer, NewAlgorithmE())
}

// NewReplicaM constructs a replica backed by Algorithm-M.
func NewReplicaM(peer uint64) *Replica {
	return NewReplica(peer, NewAlgorithmM())
}

// NewReplicaEWithRandomPeer constructs an Algorithm-E replica with a peer
// ID minted by peerid.New, for callers (tests, demos) that don't want to
// coordinate peer-ID allocation themselves.
func NewReplicaEWithRandomPeer() *Replica {
	return NewReplicaE(peerid.New())
}

// NewReplicaMWithRandomPeer constructs an Algorithm-M replica with a peer
// ID minted by peerid.New.
func NewReplicaMWithRandomPeer() *Replica {
	return NewReplicaM(peerid.New())
}

func (r *Replica) newID() ID {
	id := ID{Lamport: r.nextLamport, Peer: r.peer}
	r.nextLamport++
	return id
}

// Create allocates a node under parent (or under RootID if parent is nil),
// stamps it with a fresh Lamport ID, applies it locally, and returns the
// new node's NodeID.
func (r *Replica) Create(parent *NodeID) NodeID {
	p := RootID
	if parent != nil {
		p = *parent
	}
	id := r.newID()
	op := Op{ID: id, Kind: OpCreate, Parent: p}
	ops := r.algorithm.Apply(op, true)
	r.ops[r.peer] = append(r.ops[r.peer], ops...)
	return id.NodeID()
}

// Move re-parents target under parent. It fails with a *CycleError,
// leaving state unchanged, iff target is an ancestor of parent (including
// target == parent); spec.md §6. Under Algorithm-E, Apply may expand this
// single call into several ops — root-path amplification republishing
// mis-parented or floating ancestors alongside the canonical edit (spec.md
// §4.2, §9) — and every one of them is appended to the local log so
// Merge ships the whole batch to peers, not just the canonical move.
func (r *Replica) Move(target, parent NodeID) error {
	if r.algorithm.IsAncestorOf(target, parent) {
		return &CycleError{Target: target, Parent: parent}
	}
	id := r.newID()
	op := Op{ID: id, Kind: OpMove, Target: target, Parent: parent}
	ops := r.algorithm.Apply(op, true)
	r.ops[r.peer] = append(r.ops[r.peer], ops...)
	return nil
}

// Merge absorbs every op in other's per-peer logs that self has not yet
// seen. Because each per-peer log is append-only and is only ever copied in
// order (an Algorithm-E move may append several ops sharing one lamport), the
// ops self already has are always a prefix of other's log for that peer,
// so only the tail needs to be copied over. Merge is idempotent: merging
// the same replica twice is a no-op the second time, since the tail is
// then empty for every peer.
func (r *Replica) Merge(other *Replica) {
	r.MergeOps(other.ops)
}

// MergeOps absorbs a per-peer operation log obtained out-of-band — for
// instance via UnmarshalOps over the wire — using the same
// prefix-skipping logic as Merge. It is the entry point wire-codec
// callers use to fold a remote replica's history in without holding a
// live *Replica for it.
func (r *Replica) MergeOps(remote map[uint64][]Op) {
	var batch []Op
	for peer, log := range remote {
		have := len(r.ops[peer])
		if len(log) <= have {
			continue
		}
		incoming := log[have:]
		r.ops[peer] = append(r.ops[peer], incoming...)
		for _, op := range incoming {
			batch = append(batch, op)
			if op.ID.Lamport >= r.nextLamport {
				r.nextLamport = op.ID.Lamport + 1
			}
		}
	}
	if len(batch) > 0 {
		r.algorithm.Merge(batch)
	}
}

// Nodes returns every live node known to the replica, excluding RootID.
func (r *Replica) Nodes() []NodeID {
	all := r.algorithm.Nodes()
	out := make([]NodeID, 0, len(all))
	for _, id := range all {
		if id != RootID {
			out = append(out, id)
		}
	}
	return out
}

// Parent returns the current parent of node, and false if node is unknown
// to this replica or is RootID.
func (r *Replica) Parent(node NodeID) (NodeID, bool) {
	return r.algorithm.Parent(node)
}

// IsAncestorOf reports whether ancestor is node itself, or is found while
// walking node's parent chain.
func (r *Replica) IsAncestorOf(ancestor, node NodeID) bool {
	return r.algorithm.IsAncestorOf(ancestor, node)
}

// Render returns the deterministic ASCII tree for the replica's current
// state, per spec.md §4.4.
func (r *Replica) Render() string {
	return RenderString(r.algorithm.Render())
}

// Peer returns this replica's peer ID.
func (r *Replica) Peer() uint64 {
	return r.peer
}

// Ops returns the per-peer operation logs this replica has locally
// produced or absorbed. The returned map and slices must not be mutated by
// the caller; it is exposed for diagnostics and for wire-codec callers
// that want to ship a replica's full history.
func (r *Replica) Ops() map[uint64][]Op {
	return r.ops
}
