package movabletree

import "testing"

func TestRenderStringSingleChild(t *testing.T) {
	tree := TreeNode{
		ID: RootID,
		Children: []TreeNode{
			{ID: NodeID{Lamport: 1, Peer: 1}},
		},
	}
	want := "ROOT\n└── Node[ 1@1 ]"
	if got := RenderString(tree); got != want {
		t.Errorf("RenderString() = %q, want %q", got, want)
	}
}

func TestRenderStringMultipleSiblingsAndDepth(t *testing.T) {
	tree := TreeNode{
		ID: RootID,
		Children: []TreeNode{
			{
				ID: NodeID{Lamport: 1, Peer: 1},
				Children: []TreeNode{
					{ID: NodeID{Lamport: 2, Peer: 1}},
				},
			},
			{ID: NodeID{Lamport: 3, Peer: 1}},
		},
	}
	want := "ROOT\n" +
		"├── Node[ 1@1 ]\n" +
		"│   └── Node[ 2@1 ]\n" +
		"└── Node[ 3@1 ]"
	if got := RenderString(tree); got != want {
		t.Errorf("RenderString() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderStringLeafRoot(t *testing.T) {
	if got := RenderString(TreeNode{ID: RootID}); got != "ROOT" {
		t.Errorf("RenderString() = %q, want %q", got, "ROOT")
	}
}
