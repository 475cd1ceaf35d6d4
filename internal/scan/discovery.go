package scan

import (
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxDepth bounds discovery to two directory levels below the root.
const DefaultMaxDepth = 2

var composeFilePattern = regexp.MustCompile(`^docker-compose.*\.(yml|yaml)$`)

// DiscoveryError reports a file-system enumeration failure below the project root.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to enumerate %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// IsComposeFile reports whether a base file name looks like a compose file.
func IsComposeFile(name string) bool {
	return composeFilePattern.MatchString(name)
}

// IsHidden reports whether a directory or file name starts with a dot.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// Depth returns the number of directories between root and path. A file
// directly inside root has depth 0. Paths outside root yield math.MaxInt.
func Depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return math.MaxInt
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return math.MaxInt
	}
	if rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator))
}

// Discover walks root and returns the compose files found at depth
// 0..maxDepth, sorted and de-duplicated. Hidden directories are skipped.
// Enumeration failures are logged as DiscoveryError and the partial result is
// returned.
func Discover(root string, maxDepth int, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}

	seen := make(map[string]struct{})
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping unreadable path", zap.Error(&DiscoveryError{Path: path, Err: err}))
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if IsHidden(d.Name()) {
				return filepath.SkipDir
			}
			// Files inside a directory of depth d have depth d+1.
			if Depth(root, path) >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !IsComposeFile(d.Name()) || Depth(root, path) > maxDepth {
			return nil
		}
		seen[filepath.Clean(path)] = struct{}{}
		return nil
	})
	if walkErr != nil {
		logger.Warn("Compose file discovery stopped early", zap.Error(&DiscoveryError{Path: root, Err: walkErr}))
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)

	logger.Debug("Compose file discovery finished", zap.String("root", root), zap.Int("files", len(files)))
	return files
}

// WithinBound reports whether path is a compose file that discovery bounded by
// maxDepth below root would return.
func WithinBound(root, path string, maxDepth int) bool {
	if !IsComposeFile(filepath.Base(path)) {
		return false
	}
	if Depth(root, path) > maxDepth {
		return false
	}

	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if IsHidden(part) {
			return false
		}
	}
	return true
}
