package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenDiamond(t *testing.T) {
	dir := diamondProject(t)
	root, err := Discover(dir, 4)
	require.NoError(t, err)

	candidates := Flatten(root)
	require.Len(t, candidates, 5)

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	// Pre-order, declaration order; shared occurs once per parent.
	assert.Equal(t, []string{"app", "left", "shared", "right", "shared"}, names)

	assert.Equal(t, "", candidates[0].Constraint, "root carries no declared constraint")
	assert.Equal(t, "^1.0.0", candidates[1].Constraint)
	assert.Equal(t, "^2.0.0", candidates[2].Constraint, "child carries the parent's declared constraint")
}

func TestFlattenNil(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Flatten(&Node{}))
}

func TestFlattenSkipsManifestlessChildren(t *testing.T) {
	root := &Node{
		ManifestPath: "/proj/package.json",
		Name:         "app",
		Order:        []string{"ghost", "real"},
		Constraints:  map[string]string{"ghost": "^1.0.0", "real": "^2.0.0"},
		Children: map[string]*Node{
			"real": {ManifestPath: "/proj/node_modules/real/package.json", Name: "real"},
		},
	}

	candidates := Flatten(root)
	require.Len(t, candidates, 2)
	assert.Equal(t, "app", candidates[0].Name)
	assert.Equal(t, "real", candidates[1].Name)
}

func TestFlattenGuardsSharedNodeCycles(t *testing.T) {
	// Hand-built graph with a back edge; discovery never produces one, but
	// the flattener must still terminate on it.
	a := &Node{ManifestPath: "/p/a/package.json", Name: "a"}
	b := &Node{ManifestPath: "/p/b/package.json", Name: "b"}
	a.Order = []string{"b"}
	a.Constraints = map[string]string{"b": "^1.0.0"}
	a.Children = map[string]*Node{"b": b}
	b.Order = []string{"a"}
	b.Constraints = map[string]string{"a": "^1.0.0"}
	b.Children = map[string]*Node{"a": a}

	candidates := Flatten(a)
	require.Len(t, candidates, 2)
}
