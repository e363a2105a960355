package movabletree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlgorithmECreateAndMove(t *testing.T) {
	r := NewReplicaE(1)
	a := r.Create(nil)
	b := r.Create(&a)

	parent, ok := r.Parent(b)
	require.True(t, ok)
	require.Equal(t, a, parent)

	require.NoError(t, r.Move(b, RootID))
	parent, ok = r.Parent(b)
	require.True(t, ok)
	require.Equal(t, RootID, parent)
}

func TestAlgorithmEMoveRejectsCycle(t *testing.T) {
	r := NewReplicaE(1)
	a := r.Create(nil)
	b := r.Create(&a)

	err := r.Move(a, b)
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)

	parent, _ := r.Parent(a)
	require.Equal(t, RootID, parent)
}

func TestAlgorithmEMoveOntoSelfRejected(t *testing.T) {
	r := NewReplicaE(1)
	a := r.Create(nil)
	require.Error(t, r.Move(a, a))
}

// TestAlgorithmEConvergesOnConcurrentMove exercises the scenario that
// motivates Algorithm-E's amplification pass: two replicas concurrently
// move the same node to different parents, then merge both ways. Both
// must land on the identical parent for the moved node afterward.
func TestAlgorithmEConvergesOnConcurrentMove(t *testing.T) {
	seed := NewReplicaE(1)
	root := seed.Create(nil)
	x := seed.Create(&root)
	y := seed.Create(&root)
	target := seed.Create(&root)

	replicaA := NewReplicaE(2)
	replicaA.Merge(seed)
	replicaB := NewReplicaE(3)
	replicaB.Merge(seed)

	require.NoError(t, replicaA.Move(target, x))
	require.NoError(t, replicaB.Move(target, y))

	replicaA.Merge(replicaB)
	replicaB.Merge(replicaA)

	pa, _ := replicaA.Parent(target)
	pb, _ := replicaB.Parent(target)
	require.Equal(t, pa, pb)
}

// TestAlgorithmEAmplificationShipsToRemotePeers exercises the republish
// edits themselves, not just the canonical move: two replicas race a
// 2-cycle (p1->p2 and p2->p1, both concurrently), mutually merge so both
// independently reattach the cycle to the same shape, and then one
// replica performs a further local move whose root-path walk passes
// through the reattached node and republishes its edge with a bumped
// counter (spec.md §4.2's root-path amplification). That republish must
// be shipped alongside the canonical move, or the other replica — having
// observed the same set of user-facing operations — recomputes the
// region from a stale edge set and lands a descendant under a different
// parent than the originating replica did.
func TestAlgorithmEAmplificationShipsToRemotePeers(t *testing.T) {
	seed := NewReplicaE(1)
	root := seed.Create(nil)
	p1 := seed.Create(&root)
	p2 := seed.Create(&root)
	anchor := seed.Create(&root)

	replicaA := NewReplicaE(2)
	replicaA.Merge(seed)
	replicaB := NewReplicaE(3)
	replicaB.Merge(seed)

	require.NoError(t, replicaA.Move(p1, p2))
	require.NoError(t, replicaB.Move(p2, p1))

	replicaA.Merge(replicaB)
	replicaB.Merge(replicaA)

	// Both replicas have now independently reattached the same 2-cycle
	// from the same edge set, so they must already agree.
	require.Equal(t, replicaA.Render(), replicaB.Render())

	// A further local move whose new parent is the reattached node walks
	// its root path and, if that node's cached parent disagrees with its
	// largestEdge, republishes it with a bumped counter.
	require.NoError(t, replicaA.Move(anchor, p2))

	replicaB.Merge(replicaA)
	replicaA.Merge(replicaB)

	pa, _ := replicaA.Parent(anchor)
	pb, _ := replicaB.Parent(anchor)
	require.Equal(t, pa, pb, "anchor must land under the same parent on both replicas once they have observed the same ops")
	require.Equal(t, replicaA.Render(), replicaB.Render())
}

func TestAlgorithmERenderDeterministicAcrossReplicas(t *testing.T) {
	seed := NewReplicaE(1)
	root := seed.Create(nil)
	_ = seed.Create(&root)
	_ = seed.Create(&root)

	a := NewReplicaE(2)
	a.Merge(seed)
	b := NewReplicaE(3)
	b.Merge(seed)

	require.Equal(t, a.Render(), b.Render())
}
