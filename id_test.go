package movabletree

import "testing"

func TestIDLess(t *testing.T) {
	cases := []struct {
		a, b ID
		want bool
	}{
		{ID{Lamport: 1, Peer: 5}, ID{Lamport: 2, Peer: 0}, true},
		{ID{Lamport: 2, Peer: 0}, ID{Lamport: 1, Peer: 5}, false},
		{ID{Lamport: 3, Peer: 1}, ID{Lamport: 3, Peer: 2}, true},
		{ID{Lamport: 3, Peer: 2}, ID{Lamport: 3, Peer: 1}, false},
		{ID{Lamport: 3, Peer: 1}, ID{Lamport: 3, Peer: 1}, false},
	}
	for _, c := range cases {
		if got := c.a.Less(c.b); got != c.want {
			t.Errorf("%+v.Less(%+v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestNodeIDGreaterIsInverseOfLess(t *testing.T) {
	a := NodeID{Lamport: 4, Peer: 1}
	b := NodeID{Lamport: 4, Peer: 2}
	if !b.Greater(a) {
		t.Errorf("expected %+v.Greater(%+v)", b, a)
	}
	if a.Greater(b) {
		t.Errorf("did not expect %+v.Greater(%+v)", a, b)
	}
}

func TestNodeIDStringRoot(t *testing.T) {
	if got := RootID.String(); got != "ROOT" {
		t.Errorf("RootID.String() = %q, want ROOT", got)
	}
}

func TestNodeIDStringNode(t *testing.T) {
	id := NodeID{Lamport: 7, Peer: 42}
	want := "Node[ 7@42 ]"
	if got := id.String(); got != want {
		t.Errorf("id.String() = %q, want %q", got, want)
	}
}

func TestIDNodeIDConversion(t *testing.T) {
	id := ID{Lamport: 9, Peer: 3}
	want := NodeID{Lamport: 9, Peer: 3}
	if got := id.NodeID(); got != want {
		t.Errorf("id.NodeID() = %+v, want %+v", got, want)
	}
}
