package assets

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/flanksource/commons/logger"
	"github.com/google/uuid"
)

// Stored describes an image written to the image directory
type Stored struct {
	// Path is the absolute filesystem path
	Path string
	// WebPath is the web relative reference, e.g. /static/images/<name>
	WebPath string
}

// ImageStore writes tile photos under generated, collision free names
type ImageStore struct {
	Dir       string
	WebPrefix string
	Resolver  Resolver
}

// NewImageStore creates the image directory if needed
func NewImageStore(dir, webPrefix string, resolver Resolver) (*ImageStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	if webPrefix == "" {
		webPrefix = "/static/images/"
	}
	return &ImageStore{Dir: abs, WebPrefix: webPrefix, Resolver: resolver}, nil
}

// UploadName returns the stored file name of an uploaded file:
// a random hex prefix followed by the original name with spaces replaced
func UploadName(originalName string) string {
	base := filepath.Base(filepath.FromSlash(originalName))
	if base == "." || base == string(filepath.Separator) {
		base = "upload"
	}
	return uniqueHex() + "_" + strings.ReplaceAll(base, " ", "_")
}

// SaveUpload stores the raw bytes of an uploaded photo as is
func (s *ImageStore) SaveUpload(originalName string, data []byte) (Stored, error) {
	return s.write(UploadName(originalName), data)
}

// SavePNG re-encodes img as PNG under a generated name
func (s *ImageStore) SavePNG(img image.Image) (Stored, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return Stored{}, fmt.Errorf("failed to encode png: %w", err)
	}
	return s.write(uniqueHex()+".png", buf.Bytes())
}

func (s *ImageStore) write(name string, data []byte) (Stored, error) {
	target := filepath.Join(s.Dir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return Stored{}, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return Stored{
		Path:    target,
		WebPath: path.Join(s.WebPrefix, name),
	}, nil
}

// Remove deletes the file behind ref. Missing files are not an error.
func (s *ImageStore) Remove(ref string) error {
	p, ok := s.Resolver.Resolve(ref)
	if !ok {
		logger.Debugf("image %s already gone", ref)
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", p, err)
	}
	return nil
}

func uniqueHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
