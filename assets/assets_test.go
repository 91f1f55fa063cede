package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	svg "github.com/ajstarks/svgo"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestResolverPolicy(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "static", "images", "a.png")
	writePNG(t, abs, 4, 4)

	r := NewResolver(root)

	p, ok := r.Resolve(abs)
	require.True(t, ok)
	assert.Equal(t, abs, p)

	p, ok = r.Resolve("/static/images/a.png")
	require.True(t, ok, "web paths resolve against the root")
	assert.Equal(t, abs, p)

	p, ok = r.Resolve("static/images/a.png")
	require.True(t, ok)
	assert.Equal(t, abs, p)

	_, ok = r.Resolve("/static/images/missing.png")
	assert.False(t, ok)

	_, ok = r.Resolve("")
	assert.False(t, ok)

	_, ok = r.Resolve("/static/images")
	assert.False(t, ok, "directories are not images")
}

func TestResolverFallsBackToWorkingDirectory(t *testing.T) {
	cwd := t.TempDir()
	writePNG(t, filepath.Join(cwd, "photos", "b.png"), 2, 2)
	t.Chdir(cwd)

	p, ok := NewResolver(t.TempDir()).Resolve("/photos/b.png")
	require.True(t, ok)
	assert.True(t, filepath.IsAbs(p))
	assert.True(t, strings.HasSuffix(p, filepath.Join("photos", "b.png")))
}

func TestDiscoverPrefersNamedPoster(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a-first.png"), 2, 2)
	writePNG(t, filepath.Join(dir, "cover.png"), 2, 2)

	p, ok := Discover(dir, PosterNames...)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "cover.png"), p)
}

func TestDiscoverIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "zeta.png"), 2, 2)
	writePNG(t, filepath.Join(dir, "beta.JPG"), 2, 2)
	writePNG(t, filepath.Join(dir, "alpha.gif"), 2, 2)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "aaa.png"), 0o755))

	for i := 0; i < 3; i++ {
		p, ok := Discover(dir)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "beta.JPG"), p)
	}
}

func TestDiscoverMissingOrEmpty(t *testing.T) {
	_, ok := Discover(filepath.Join(t.TempDir(), "nope"))
	assert.False(t, ok)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	_, ok = Discover(dir)
	assert.False(t, ok)

	_, ok = Discover("")
	assert.False(t, ok)
}

func TestImageStoreSaveAndRemove(t *testing.T) {
	root := t.TempDir()
	store, err := NewImageStore(filepath.Join(root, "static", "images"), "/static/images/", NewResolver(root))
	require.NoError(t, err)

	up, err := store.SaveUpload("my tile photo.jpg", []byte("raw bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(up.Path, "_my_tile_photo.jpg"))
	assert.True(t, strings.HasPrefix(up.WebPath, "/static/images/"))
	data, err := os.ReadFile(up.Path)
	require.NoError(t, err)
	assert.Equal(t, "raw bytes", string(data))

	img := imaging.New(3, 2, color.NRGBA{G: 255, A: 255})
	saved, err := store.SavePNG(img)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(saved.Path))
	assert.NotEqual(t, up.Path, saved.Path)

	decoded, err := LoadImage(saved.Path)
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.Width())
	assert.Equal(t, 2, decoded.Height())

	require.NoError(t, store.Remove(saved.WebPath))
	_, err = os.Stat(saved.Path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(saved.WebPath), "removing twice is not an error")
}

func TestUploadNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		name := UploadName("same.png")
		assert.False(t, seen[name])
		seen[name] = true
	}
}

func TestLoadImageRejectsCorruptFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

	_, err := LoadImage(path)
	assert.Error(t, err)

	_, err = DecodeBytes([]byte{0x89, 'P', 'N', 'G'})
	assert.Error(t, err)
}

func TestDecodedEncodeKeepsPixels(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.Set(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	data, kind, err := Decoded{Image: src, Format: imaging.PNG}.Encode()
	require.NoError(t, err)
	assert.Equal(t, "PNG", kind)

	back, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, imaging.Clone(src).Pix, imaging.Clone(back).Pix)
}

// svgLogo draws a w x h logo with a matching view box
func svgLogo(w, h int) []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(w, h, 0, 0, w, h)
	canvas.Rect(0, 0, w, h, "fill:#00aa77")
	canvas.Circle(w/2, h/2, h/4, "fill:white")
	canvas.End()
	return buf.Bytes()
}

func TestRasterizeSVG(t *testing.T) {
	logo := svgLogo(200, 100)
	img, err := RasterizeSVG(logo)
	require.NoError(t, err)
	assert.Equal(t, svgRasterSize, img.Bounds().Dx())
	assert.Equal(t, svgRasterSize/2, img.Bounds().Dy())

	tall, err := RasterizeSVG(svgLogo(50, 100))
	require.NoError(t, err)
	assert.Equal(t, svgRasterSize/2, tall.Bounds().Dx())
	assert.Equal(t, svgRasterSize, tall.Bounds().Dy())

	_, err = RasterizeSVG([]byte("<not svg"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "logo.svg")
	require.NoError(t, os.WriteFile(path, logo, 0o644))
	decoded, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, imaging.PNG, decoded.Format)
}
