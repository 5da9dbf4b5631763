package shipcheck

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirNames are directory names that never hold delivery scripts and are
// not descended into during discovery.
var skipDirNames = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
	"__pycache__":  {},
}

// DiscoverScripts walks root and returns every file whose extension maps to
// a supported script type, sorted by path. Hidden directories and well-known
// dependency directories are skipped. Root may also name a single script
// file, in which case at most that one script is returned.
func DiscoverScripts(root string) ([]Script, error) {
	var scripts []Script
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if _, skip := skipDirNames[name]; skip {
				return fs.SkipDir
			}
			return nil
		}
		t, ok := scriptExtensions[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}
		scripts = append(scripts, Script{Path: path, Type: t})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("shipcheck: discover scripts under %q: %w", root, err)
	}

	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Path < scripts[j].Path })
	return scripts, nil
}
