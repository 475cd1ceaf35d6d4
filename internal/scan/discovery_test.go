package scan

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsComposeFile(t *testing.T) {
	cases := map[string]bool{
		"docker-compose.yml":          true,
		"docker-compose.yaml":         true,
		"docker-compose.override.yml": true,
		"docker-compose-dev.yaml":     true,
		"docker-compose.yml.bak":      false,
		"Docker-compose.yml":          false,
		"compose.yml":                 false,
		"docker-compose.json":         false,
		"my-docker-compose.yml":       false,
	}
	for name, expected := range cases {
		assert.Equal(t, expected, IsComposeFile(name), name)
	}
}

func TestDepth(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "shop")

	assert.Equal(t, 0, Depth(root, filepath.Join(root, "docker-compose.yml")))
	assert.Equal(t, 1, Depth(root, filepath.Join(root, "infra", "docker-compose.yml")))
	assert.Equal(t, 2, Depth(root, filepath.Join(root, "infra", "db", "docker-compose.yml")))
	assert.Equal(t, 3, Depth(root, filepath.Join(root, "a", "b", "c", "docker-compose.yml")))
	assert.Equal(t, 0, Depth(root, root))
	assert.Equal(t, math.MaxInt, Depth(root, filepath.Join(string(filepath.Separator), "work", "other", "docker-compose.yml")))
}

func TestDiscover_DepthBound(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docker-compose.yml":              postgresCompose,
		"a/docker-compose.yaml":           postgresCompose,
		"a/b/docker-compose.override.yml": postgresCompose,
		"a/b/c/docker-compose.yml":        postgresCompose,
		"a/b/c/d/docker-compose.yml":      postgresCompose,
		"a/notes.txt":                     "not compose",
		"a/b/compose.yml":                 postgresCompose,
	})

	files := Discover(root, DefaultMaxDepth, zap.NewNop())

	assert.Equal(t, []string{
		filepath.Join(root, "a", "b", "docker-compose.override.yml"),
		filepath.Join(root, "a", "docker-compose.yaml"),
		filepath.Join(root, "docker-compose.yml"),
	}, files)
	assert.NotContains(t, files, filepath.Join(root, "a", "b", "c", "docker-compose.yml"))
}

func TestDiscover_SkipsHiddenDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/docker-compose.yml":           postgresCompose,
		".idea/run/docker-compose.yml":      postgresCompose,
		"visible/.cache/docker-compose.yml": postgresCompose,
		"visible/docker-compose.yml":        postgresCompose,
	})

	files := Discover(root, DefaultMaxDepth, zap.NewNop())

	assert.Equal(t, []string{filepath.Join(root, "visible", "docker-compose.yml")}, files)
}

func TestDiscover_ZeroDepthOnlyRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docker-compose.yml":     postgresCompose,
		"sub/docker-compose.yml": postgresCompose,
	})

	files := Discover(root, 0, zap.NewNop())
	assert.Equal(t, []string{filepath.Join(root, "docker-compose.yml")}, files)
}

func TestDiscover_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")

	files := Discover(root, DefaultMaxDepth, nil)
	assert.Empty(t, files)
}

func TestWithinBound(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "shop")

	assert.True(t, WithinBound(root, filepath.Join(root, "docker-compose.yml"), 2))
	assert.True(t, WithinBound(root, filepath.Join(root, "a", "b", "docker-compose.yml"), 2))
	assert.False(t, WithinBound(root, filepath.Join(root, "a", "b", "c", "docker-compose.yml"), 2))
	assert.False(t, WithinBound(root, filepath.Join(root, ".devcontainer", "docker-compose.yml"), 2))
	assert.False(t, WithinBound(root, filepath.Join(root, "a", "README.md"), 2))
	assert.False(t, WithinBound(root, filepath.Join(string(filepath.Separator), "tmp", "docker-compose.yml"), 2))
}

func TestDiscoveryError(t *testing.T) {
	err := &DiscoveryError{Path: "/work/shop/private", Err: os.ErrPermission}

	assert.Contains(t, err.Error(), "/work/shop/private")
	assert.True(t, errors.Is(err, os.ErrPermission))
}
