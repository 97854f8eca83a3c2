package tree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// diamondProject lays out a hoisted node_modules tree where left and right
// both depend on the same installed shared package.
func diamondProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"),
		`{"name": "app", "version": "1.0.0", "scripts": {"test": "exit 0"},
		  "dependencies": {"left": "^1.0.0", "right": "^1.0.0"}}`)
	writeFile(t, filepath.Join(dir, "node_modules", "left", "package.json"),
		`{"name": "left", "version": "1.0.0", "dependencies": {"shared": "^2.0.0"}}`)
	writeFile(t, filepath.Join(dir, "node_modules", "right", "package.json"),
		`{"name": "right", "version": "1.0.0", "dependencies": {"shared": "^2.0.0"}}`)
	writeFile(t, filepath.Join(dir, "node_modules", "shared", "package.json"),
		`{"name": "shared", "version": "2.0.0"}`)
	return dir
}

func TestDiscoverDiamond(t *testing.T) {
	dir := diamondProject(t)

	root, err := Discover(dir, 4)
	require.NoError(t, err)
	require.NotNil(t, root)

	assert.Equal(t, "app", root.Name)
	assert.Equal(t, []string{"left", "right"}, root.Order)
	assert.Equal(t, "^1.0.0", root.Constraints["left"])

	left := root.Children["left"]
	require.NotNil(t, left)
	right := root.Children["right"]
	require.NotNil(t, right)

	// The hoisted shared package is found from both parents through
	// ancestor node_modules lookup, as separate nodes.
	require.NotNil(t, left.Children["shared"])
	require.NotNil(t, right.Children["shared"])
	assert.NotSame(t, left.Children["shared"], right.Children["shared"])
	assert.Equal(t, left.Children["shared"].ManifestPath, right.Children["shared"].ManifestPath)
}

func TestDiscoverNoManifest(t *testing.T) {
	root, err := Discover(t.TempDir(), 4)
	require.NoError(t, err)
	assert.Nil(t, root)
}

func TestDiscoverUninstalledDependencyTerminatesBranch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"),
		`{"name": "app", "version": "1.0.0", "dependencies": {"ghost": "^1.0.0"}}`)

	root, err := Discover(dir, 4)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, []string{"ghost"}, root.Order)
	assert.Nil(t, root.Children["ghost"])
}

func TestDiscoverUnparseableManifestKept(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "app"`)

	root, err := Discover(dir, 4)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.NotEmpty(t, root.ManifestPath)
	assert.Empty(t, root.Name)
	assert.Empty(t, root.Order)
}

func TestDiscoverDepthLimit(t *testing.T) {
	dir := diamondProject(t)

	root, err := Discover(dir, 1)
	require.NoError(t, err)
	require.NotNil(t, root)

	left := root.Children["left"]
	require.NotNil(t, left)
	assert.Empty(t, left.Children, "descent stops at maxDepth")
}

func TestDiscoverCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"),
		`{"name": "app", "version": "1.0.0", "dependencies": {"a": "^1.0.0"}}`)
	writeFile(t, filepath.Join(dir, "node_modules", "a", "package.json"),
		`{"name": "a", "version": "1.0.0", "dependencies": {"b": "^1.0.0"}}`)
	writeFile(t, filepath.Join(dir, "node_modules", "b", "package.json"),
		`{"name": "b", "version": "1.0.0", "dependencies": {"a": "^1.0.0"}}`)

	root, err := Discover(dir, 50)
	require.NoError(t, err)

	a := root.Children["a"]
	require.NotNil(t, a)
	b := a.Children["b"]
	require.NotNil(t, b)
	assert.Nil(t, b.Children["a"], "cycle back to a is not descended again")
}

func TestDiscoverDevDependenciesAtRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"),
		`{"name": "app", "version": "1.0.0",
		  "dependencies": {"dep": "^1.0.0"},
		  "devDependencies": {"devdep": "~1.0.0"}}`)
	writeFile(t, filepath.Join(dir, "node_modules", "dep", "package.json"),
		`{"name": "dep", "version": "1.0.0"}`)
	writeFile(t, filepath.Join(dir, "node_modules", "devdep", "package.json"),
		`{"name": "devdep", "version": "1.0.0"}`)

	root, err := Discover(dir, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"dep", "devdep"}, root.Order)
	assert.Equal(t, "~1.0.0", root.Constraints["devdep"])
	require.NotNil(t, root.Children["devdep"])
}
