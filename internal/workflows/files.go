package workflows

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"github.com/bmatcuk/doublestar/v4"
)

// ResolveFiles takes user-provided paths, directories and globs (with **
// support) relative to baseDir and returns the matching regular files,
// deduplicated, in the order they were named.
func ResolveFiles(patterns []string, baseDir string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		resolved, err := resolvePattern(pattern, baseDir)
		if err != nil {
			return nil, err
		}

		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, kerrors.ErrNoFilesFound
	}
	return files, nil
}

func resolvePattern(pattern, baseDir string) ([]string, error) {
	absPattern := pattern
	if !filepath.IsAbs(pattern) {
		absPattern = filepath.Join(baseDir, pattern)
	}

	info, err := os.Stat(absPattern)
	if err == nil && info.IsDir() {
		return findFilesInDir(absPattern)
	}

	if strings.ContainsAny(pattern, "*?[{") {
		return expandGlob(absPattern, pattern)
	}

	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", pattern)
		}
		return nil, fmt.Errorf("checking %s: %w", pattern, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", pattern)
	}
	return []string{absPattern}, nil
}

func expandGlob(absPattern, pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var filtered []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		filtered = append(filtered, m)
	}
	sort.Strings(filtered)
	return filtered, nil
}

func findFilesInDir(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files, err
}
