package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadSource loads a program file. Directories are rejected.
func ReadSource(path string) (src string, fullPath string, err error) {
	fullPath, _, err = GetPathInfo(path)
	if err != nil {
		return "", "", err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return "", fullPath, err
	}
	if info.IsDir() {
		return "", fullPath, fmt.Errorf("%s is a directory", fullPath)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fullPath, err
	}
	return string(data), fullPath, nil
}

// DefaultOutputPath swaps the extension of inPath for ext (".obj").
func DefaultOutputPath(inPath, ext string) string {
	old := filepath.Ext(inPath)
	if old == "" {
		return inPath + ext
	}
	return strings.TrimSuffix(inPath, old) + ext
}
