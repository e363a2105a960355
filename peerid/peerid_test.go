package peerid

import "testing"

func TestNewProducesDistinctValues(t *testing.T) {
	a := New()
	b := New()
	if a == b {
		t.Fatalf("New() produced the same value twice: %d", a)
	}
}
