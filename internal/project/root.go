// Package project locates the project root for a document: the nearest
// ancestor directory containing the declarative export configuration file.
package project

import (
	"os"
	"path/filepath"
)

// ConfigFileName is the per-project export configuration file.
const ConfigFileName = ".export.toml"

// FindRoot walks from filePath's directory upward and returns the first
// ancestor containing ConfigFileName. Returns false if no ancestor has one.
func FindRoot(filePath string) (string, bool) {
	start := filePath
	if fi, err := os.Stat(filePath); err != nil || !fi.IsDir() {
		start = filepath.Dir(filePath)
	}

	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ConfigPath returns the configuration file path for a project root.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFileName)
}
