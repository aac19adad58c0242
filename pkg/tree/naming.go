package tree

import "strconv"

// NameUnlabeled gives every node without a branch length DefaultLength and
// every node without a name a synthetic one, "y" followed by its postorder
// index. If that name is already taken a numeric suffix keeps it unique.
//
// The counter is local to the call. Named nodes keep their names, so running
// it twice is harmless but pointless.
func NameUnlabeled(t *Tree) {
	nodes := t.Postorder()
	taken := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.Name != "" {
			taken[n.Name] = true
		}
	}

	for i, n := range nodes {
		if n.Length == nil {
			n.SetLength(DefaultLength)
		}
		if n.Name != "" {
			continue
		}
		name := "y" + strconv.Itoa(i)
		for k := 1; taken[name]; k++ {
			name = "y" + strconv.Itoa(i) + "_" + strconv.Itoa(k)
		}
		n.Name = name
		taken[name] = true
	}
}
