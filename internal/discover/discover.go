// Package discover locates XML input files on disk.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover walks dir recursively and returns the paths of all .xml files
// (extension matched case-insensitively), sorted by path so batch order is
// deterministic. Inaccessible entries are skipped.
func Discover(dir string) ([]string, error) {
	var results []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if info.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".xml") {
			return nil
		}
		results = append(results, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

// Expand resolves a mixed list of files and directories into a flat, ordered
// list of file paths. Directories are expanded via Discover; explicit file
// arguments are kept as given, .xml or not.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		found, err := Discover(p)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		out = append(out, found...)
	}
	return out, nil
}
