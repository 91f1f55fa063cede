package assets

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver turns stored image references into readable filesystem paths.
//
// A reference is tried as an absolute path, then relative to Root, then
// relative to the working directory. Resolution never fails loudly: an
// unresolvable reference is simply reported as absent.
type Resolver struct {
	Root string
}

// NewResolver creates a resolver rooted at the application directory
func NewResolver(root string) Resolver {
	return Resolver{Root: root}
}

// Resolve returns the filesystem path of ref and whether it exists
func (r Resolver) Resolve(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}

	if filepath.IsAbs(ref) && isFile(ref) {
		return ref, true
	}

	// Web paths such as /static/images/x.png are absolute-looking but root relative
	stripped := strings.TrimLeft(filepath.FromSlash(ref), string(filepath.Separator))
	if stripped == "" {
		return "", false
	}

	if r.Root != "" {
		candidate := filepath.Join(r.Root, stripped)
		if isFile(candidate) {
			return candidate, true
		}
	}

	if isFile(stripped) {
		abs, err := filepath.Abs(stripped)
		if err != nil {
			return stripped, true
		}
		return abs, true
	}

	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
