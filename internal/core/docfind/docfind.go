// Package docfind locates candidate document files on disk for the picker.
package docfind

import (
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover walks root and returns the relative paths matching any of the
// doublestar patterns, sorted and deduplicated.
func Discover(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)

	seen := map[string]bool{}
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			if info, err := fs.Stat(fsys, m); err != nil || info.IsDir() {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}

	sort.Strings(out)
	return out, nil
}
