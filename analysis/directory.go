package analysis

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// NoExtension labels files without a suffix
const NoExtension = "no extension"

// FileEntry names a file and its size in bytes
type FileEntry struct {
	Name string
	Size int64
}

// ExtensionCount is the number of files sharing an extension
type ExtensionCount struct {
	Extension string
	Count     int
}

// DirectoryStats describes the regular files directly inside a directory
type DirectoryStats struct {
	Path       string
	TotalFiles int
	TotalSize  int64
	// Extensions are ordered by count, most common first
	Extensions []ExtensionCount
	// Largest is the zero value when the directory holds no non-empty file
	Largest FileEntry
}

// AnalyzeDirectory scans dir without descending into subdirectories. Hidden
// entries are skipped.
func AnalyzeDirectory(fs afero.Fs, dir string) (*DirectoryStats, error) {
	info, err := fs.Stat(dir)
	if err != nil {
		if errors.Is(err, afero.ErrFileNotFound) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotADirectory)
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	stats := &DirectoryStats{Path: dir}
	counts := make(map[string]int)
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || !entry.Mode().IsRegular() {
			continue
		}

		stats.TotalFiles++
		stats.TotalSize += entry.Size()
		counts[extensionOf(entry.Name())]++

		if entry.Size() > stats.Largest.Size {
			stats.Largest = FileEntry{Name: entry.Name(), Size: entry.Size()}
		}
	}

	stats.Extensions = make([]ExtensionCount, 0, len(counts))
	for ext, n := range counts {
		stats.Extensions = append(stats.Extensions, ExtensionCount{Extension: ext, Count: n})
	}
	sort.Slice(stats.Extensions, func(i, j int) bool {
		a, b := stats.Extensions[i], stats.Extensions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Extension < b.Extension
	})
	return stats, nil
}

func extensionOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || ext == "." {
		return NoExtension
	}
	return ext
}

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes renders n with binary multiples and two decimals, e.g. "1.50 KB"
func FormatBytes(n int64) string {
	v := float64(n)
	for _, unit := range byteUnits {
		if v < 1024 {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
		v /= 1024
	}
	return fmt.Sprintf("%.2f TB", v)
}
