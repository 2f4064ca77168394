package menu

import "github.com/vince123890/website-kasir/internal/access"

// Filter prunes nodes by permission, depth-first and order-preserving. A node
// whose permission fails is dropped without looking at its children; a
// container left without children is dropped too. The input is not modified.
func Filter(nodes []Node, ac access.Context) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Permission != "" && !ac.Can(n.Permission) {
			continue
		}
		if n.HasChildren() {
			children := Filter(n.Children, ac)
			if len(children) == 0 {
				continue
			}
			n.Children = children
		}
		out = append(out, n)
	}
	return out
}
