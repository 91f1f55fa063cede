package assets

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// svgRasterSize is the longest edge, in pixels, of a rasterized SVG
const svgRasterSize = 600

// Decoded is an image ready to be embedded in a document
type Decoded struct {
	Image  image.Image
	Format imaging.Format
}

// Width in pixels
func (d Decoded) Width() int { return d.Image.Bounds().Dx() }

// Height in pixels
func (d Decoded) Height() int { return d.Image.Bounds().Dy() }

// Encode writes the image in its embedding format: JPEG sources stay JPEG,
// everything else becomes PNG.
func (d Decoded) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	if d.Format == imaging.JPEG {
		if err := imaging.Encode(&buf, d.Image, imaging.JPEG, imaging.JPEGQuality(92)); err != nil {
			return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
		}
		return buf.Bytes(), "JPG", nil
	}
	if err := imaging.Encode(&buf, d.Image, imaging.PNG); err != nil {
		return nil, "", fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), "PNG", nil
}

// LoadImage decodes the image at path. JPEG and PNG files are honoured with
// their EXIF orientation; SVG files are rasterized.
func LoadImage(path string) (Decoded, error) {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		data, err := os.ReadFile(path)
		if err != nil {
			return Decoded{}, fmt.Errorf("failed to read svg: %w", err)
		}
		img, err := RasterizeSVG(data)
		if err != nil {
			return Decoded{}, err
		}
		return Decoded{Image: img, Format: imaging.PNG}, nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return Decoded{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	if err := checkBounds(img); err != nil {
		return Decoded{}, err
	}
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		format = imaging.PNG
	}
	return Decoded{Image: img, Format: format}, nil
}

// DecodeBytes decodes an in-memory raster image
func DecodeBytes(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := checkBounds(img); err != nil {
		return nil, err
	}
	return img, nil
}

// RasterizeSVG renders SVG bytes into an RGBA image, preserving the aspect
// ratio of the view box
func RasterizeSVG(svgBytes []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgBytes), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = 100, 100
	}

	var targetWidth, targetHeight int
	if aspect := w / h; aspect >= 1.0 {
		targetWidth = svgRasterSize
		targetHeight = int(float64(svgRasterSize) / aspect)
	} else {
		targetHeight = svgRasterSize
		targetWidth = int(float64(svgRasterSize) * aspect)
	}
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	icon.SetTarget(0, 0, float64(targetWidth), float64(targetHeight))
	rgba := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	scanner := rasterx.NewScannerGV(targetWidth, targetHeight, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(targetWidth, targetHeight, scanner)
	icon.Draw(raster, 1.0)

	return rgba, nil
}

func checkBounds(img image.Image) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("image has invalid dimensions: %dx%d", b.Dx(), b.Dy())
	}
	return nil
}
