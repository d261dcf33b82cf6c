// Package discovery finds video files to search or encode.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alexheretic/crfseek/internal/logging"
	"github.com/alexheretic/crfseek/internal/util"
)

// FindVideoFiles finds video files directly inside dir, sorted
// case-insensitively by filename. Hidden files and subdirectories are
// skipped.
func FindVideoFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory does not exist: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	var files []string
	skipped := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		fullPath := filepath.Join(dir, name)
		if util.IsVideoFile(fullPath) {
			files = append(files, fullPath)
		} else {
			skipped++
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no video files found in %s", dir)
	}
	if skipped > 0 {
		logging.Debug("skipped non-video files", "count", skipped, "dir", dir)
	}

	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})
	return files, nil
}

// Expand resolves an input path to the files to process: a video file
// yields itself, a directory yields its video files.
func Expand(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input does not exist: %s", input)
	}
	if info.IsDir() {
		return FindVideoFiles(input)
	}
	if !util.IsVideoFile(input) {
		return nil, fmt.Errorf("%s is not a supported video file", input)
	}
	return []string{input}, nil
}
