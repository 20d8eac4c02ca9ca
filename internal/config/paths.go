package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetProjectRoot returns the directory that owns the task ledger.
// Resolution order (first match wins):
// 1. Explicit config via "store.path" (Viper/env/flag)
// 2. Nearest ancestor of the working directory containing a .git or
//    go.mod marker
// 3. The working directory itself
func GetProjectRoot() string {
	if path := viper.GetString("store.path"); path != "" {
		return path
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}

	if root, ok := findMarkerDir(cwd); ok {
		return root
	}
	return cwd
}

// findMarkerDir walks from dir toward the filesystem root looking for a
// project marker.
func findMarkerDir(dir string) (string, bool) {
	for {
		for _, marker := range []string{".git", "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
