package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ParseYAMLPath validates a user-supplied YAML file path (a settings file or
// an exported profile) and returns the cleaned path. The path must be
// absolute, free of .. segments, and name an existing .yaml or .yml file.
func ParseYAMLPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		return "", errors.New("path must be absolute")
	}

	if strings.Contains(path, "..") {
		return "", errors.New("path contains invalid traversal")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New("file does not exist")
		}
		return "", err
	}

	if info.IsDir() {
		return "", errors.New("path is a directory, not a file")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return "", errors.New("file must have .yaml or .yml extension")
	}

	return filepath.Clean(path), nil
}
