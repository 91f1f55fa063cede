package assets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageExtensions are the extensions accepted for posters, templates and tile photos
var ImageExtensions = []string{".jpg", ".jpeg", ".png"}

// PosterNames are tried, in order, before falling back to any image in the poster directory
var PosterNames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"Cover.jpg", "Cover.JPG", "IMG_1306.JPG",
}

// IsImageFile reports whether name carries one of the accepted image extensions
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Discover returns the first image in dir. Preferred names win when present,
// otherwise the lexicographically first image file is picked.
func Discover(dir string, preferred ...string) (string, bool) {
	if dir == "" {
		return "", false
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}

	for _, name := range preferred {
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate, true
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), true
}
