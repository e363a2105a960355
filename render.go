package movabletree

import "strings"

// RenderString renders a TreeNode as the ASCII tree described in spec.md
// §4.4: each node on its own line, children connected with "├── " except
// the last child of a level which uses "└── ", and continuation prefixes
// of "│   " or "    " carried down through deeper levels depending on
// whether an ancestor was itself a last child.
func RenderString(root TreeNode) string {
	var b strings.Builder
	b.WriteString(root.ID.String())
	b.WriteByte('\n')
	writeChildren(&b, root.Children, "")
	return strings.TrimRight(b.String(), "\n")
}

func writeChildren(b *strings.Builder, children []TreeNode, prefix string) {
	for i, child := range children {
		last := i == len(children)-1
		connector := "├── "
		nextPrefix := prefix + "│   "
		if last {
			connector = "└── "
			nextPrefix = prefix + "    "
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(child.ID.String())
		b.WriteByte('\n')
		writeChildren(b, child.Children, nextPrefix)
	}
}
