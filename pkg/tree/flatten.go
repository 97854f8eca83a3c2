package tree

// Candidate is one flattened, to-be-audited manifest reference plus the
// version constraint its parent declared for it. Latest is written once by
// the registry resolution phase and read by the test phase.
type Candidate struct {
	Path       string
	Name       string
	Constraint string
	Latest     string
}

// Flatten performs a pre-order, declaration-order descent of the tree,
// emitting one candidate per node that has a manifest. Shared subtrees are
// emitted once per occurrence; collapsing duplicates is the inspector's job.
// This order is the test-execution order before concurrency applies.
func Flatten(n *Node) []*Candidate {
	return flatten(n, "", nil, map[string]bool{})
}

func flatten(n *Node, constraint string, acc []*Candidate, onPath map[string]bool) []*Candidate {
	if n == nil || n.ManifestPath == "" {
		return acc
	}

	acc = append(acc, &Candidate{
		Path:       n.ManifestPath,
		Name:       n.Name,
		Constraint: constraint,
	})

	onPath[n.ManifestPath] = true
	defer delete(onPath, n.ManifestPath)

	for _, name := range n.Order {
		child, ok := n.Children[name]
		if !ok || child == nil || child.ManifestPath == "" {
			continue
		}
		if onPath[child.ManifestPath] {
			continue
		}
		acc = flatten(child, n.Constraints[name], acc, onPath)
	}
	return acc
}
