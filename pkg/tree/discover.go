// Package tree discovers the installed dependency tree of an npm project and
// flattens it into the ordered candidate list the audit phases consume.
package tree

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/pkgvet/pkgvet/pkg/manifest"
)

const nodeModulesDir = "node_modules"

// Node is one position in the discovered dependency tree. The same on-disk
// package reached through different parents yields distinct nodes; collapsing
// those is the report's job, not discovery's.
type Node struct {
	// ManifestPath locates this node's package.json. Empty for declared but
	// uninstalled dependencies, which terminate their branch.
	ManifestPath string
	// Name is the manifest's declared package name, when parseable.
	Name string
	// Order holds declared dependency names in manifest declaration order.
	Order []string
	// Constraints maps declared dependency names to their version constraint.
	Constraints map[string]string
	// Children maps declared dependency names to their resolved subtree.
	Children map[string]*Node
}

// Discover walks the project rooted at dir, following declared dependencies
// into node_modules up to maxDepth levels. Lookup mimics node's resolution:
// a dependency's directory is searched in the nearest node_modules first,
// then in each ancestor's. A missing package.json at the root yields a nil
// node.
func Discover(dir string, maxDepth int) (*Node, error) {
	rootManifest := filepath.Join(dir, "package.json")
	if _, err := os.Stat(rootManifest); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	d := &discoverer{maxDepth: maxDepth}
	return d.node(rootManifest, []string{dir}, map[string]bool{}, 0), nil
}

type discoverer struct {
	maxDepth int
}

// node builds the subtree rooted at manifestPath. scopes lists directories
// whose node_modules may satisfy child lookups, innermost first. onPath holds
// the manifest paths of the current descent to cut dependency cycles.
func (d *discoverer) node(manifestPath string, scopes []string, onPath map[string]bool, depth int) *Node {
	n := &Node{ManifestPath: manifestPath}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		// Leave the node in place so the executor reports the parse failure.
		log.Debugf("discovery kept unparseable manifest %s: %v", manifestPath, err)
		return n
	}
	n.Name = m.Name()

	if depth >= d.maxDepth {
		return n
	}

	n.Constraints = make(map[string]string)
	n.Children = make(map[string]*Node)
	onPath[manifestPath] = true
	defer delete(onPath, manifestPath)

	for _, dep := range declaredDeps(m) {
		if _, seen := n.Constraints[dep.Name]; seen {
			continue
		}
		n.Order = append(n.Order, dep.Name)
		n.Constraints[dep.Name] = dep.Constraint

		childDir := resolveChildDir(scopes, dep.Name)
		if childDir == "" {
			// Declared but not installed; the branch simply ends here.
			continue
		}
		childManifest := filepath.Join(childDir, "package.json")
		if onPath[childManifest] {
			log.Debugf("dependency cycle via %s, not descending again", childManifest)
			continue
		}
		childScopes := append([]string{childDir}, scopes...)
		n.Children[dep.Name] = d.node(childManifest, childScopes, onPath, depth+1)
	}
	return n
}

// declaredDeps returns the dependencies and devDependencies sections in
// declaration order. devDependencies of nested packages are typically not
// installed, in which case their branches terminate naturally.
func declaredDeps(m *manifest.Manifest) []manifest.Dependency {
	deps := m.Dependencies(manifest.SectionDependencies)
	dev := m.Dependencies(manifest.SectionDevDependencies)
	out := make([]manifest.Dependency, 0, len(deps)+len(dev))
	out = append(out, deps...)
	return append(out, dev...)
}

// resolveChildDir finds the installed directory for a dependency, searching
// each scope's node_modules from innermost outward.
func resolveChildDir(scopes []string, name string) string {
	for _, scope := range scopes {
		dir := filepath.Join(scope, nodeModulesDir, name)
		if info, err := os.Stat(filepath.Join(dir, "package.json")); err == nil && !info.IsDir() {
			return dir
		}
	}
	return ""
}
