package movabletree

import "fmt"

// CycleError is returned by Replica.Move when the requested move would make
// Target its own ancestor (including Target == Parent). The replica's state
// is left unchanged when this error is returned.
type CycleError struct {
	Target NodeID
	Parent NodeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("movabletree: move would cycle: %s is already an ancestor of %s", e.Target, e.Parent)
}

// InvariantViolationError indicates internal corruption: an ancestor walk
// found a node whose parent points back to itself outside of the root
// sentinel. This should be unreachable if every operation was applied
// through the Replica facade; per spec.md §7 it is a fatal bug class, not a
// recoverable condition, so algorithm implementations panic with this type
// rather than returning it through a normal error path.
type InvariantViolationError struct {
	Node NodeID
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("movabletree: invariant violation: self-parent loop at %s", e.Node)
}
