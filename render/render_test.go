package render

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/tilecat/api"
	"github.com/flanksource/tilecat/assets"
	"github.com/flanksource/tilecat/render/pdftest"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }

type fixture struct {
	root string
}

func newFixture(t *testing.T) *fixture {
	return &fixture{root: t.TempDir()}
}

func (f *fixture) path(rel string) string {
	return filepath.Join(f.root, filepath.FromSlash(rel))
}

func (f *fixture) writeImage(t *testing.T, rel string, img image.Image) string {
	t.Helper()
	path := f.path(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, imaging.Save(img, path))
	return path
}

func (f *fixture) writeFile(t *testing.T, rel, content string) string {
	t.Helper()
	path := f.path(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// withBackgrounds adds a cover poster and a tile page template
func (f *fixture) withBackgrounds(t *testing.T) *fixture {
	f.writeImage(t, "static/posters/cover.png", imaging.New(20, 28, color.NRGBA{R: 200, G: 30, B: 30, A: 255}))
	f.writeImage(t, "static/tile_templates/frame.png", imaging.New(20, 28, color.NRGBA{R: 30, G: 30, B: 30, A: 255}))
	return f
}

func (f *fixture) renderer() *Renderer {
	return New(Options{
		PosterDir:   f.path("static/posters"),
		TemplateDir: f.path("static/tile_templates"),
		Resolver:    assets.NewResolver(f.root),
		Now:         fixedNow,
	})
}

func tiles(names ...string) []api.Tile {
	out := make([]api.Tile, 0, len(names))
	for i, name := range names {
		tile := api.NewTile(name, "glossy", "600x600", "")
		tile.ID = int64(i + 1)
		out = append(out, tile)
	}
	return out
}

func TestTemplateEmitsCoverPlusOnePagePerTile(t *testing.T) {
	f := newFixture(t).withBackgrounds(t)
	r := f.renderer()

	for _, n := range []int{0, 1, 3} {
		names := make([]string, n)
		for i := range names {
			names[i] = "tile"
		}
		doc, err := r.RenderTemplate(tiles(names...), "")
		require.NoError(t, err)
		assert.Equal(t, n+1, doc.Pages, "tiles=%d", n)
		pdftest.AssertPDFPageCount(t, doc.Data, n+1)
		assert.Empty(t, doc.IssuesFor(StepPoster))
		assert.Empty(t, doc.IssuesFor(StepTemplate))
	}
}

func TestTemplateTilePageText(t *testing.T) {
	f := newFixture(t).withBackgrounds(t)

	tile := api.NewTile("carrara", "polished", "600x1200 mm", "")
	doc, err := f.renderer().RenderTemplate([]api.Tile{tile}, "  Acme Interiors ")
	require.NoError(t, err)

	texts := pdftest.PageTexts(t, doc.Data)
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Client: Acme Interiors")
	assert.Contains(t, texts[1], "600X1200 MM")
	assert.Contains(t, texts[1], "DESIGN NAME :- CARRARA")
	assert.Contains(t, texts[1], "FINISH :- POLISHED")
}

func TestTemplateSkipsEmptyOverlayLines(t *testing.T) {
	f := newFixture(t).withBackgrounds(t)

	doc, err := f.renderer().RenderTemplate([]api.Tile{{Name: "ONYX"}}, "")
	require.NoError(t, err)

	texts := pdftest.PageTexts(t, doc.Data)
	require.Len(t, texts, 2)
	assert.NotContains(t, texts[0], "Client:")
	assert.Contains(t, texts[1], "DESIGN NAME :- ONYX")
	assert.NotContains(t, texts[1], "FINISH")
}

func TestTemplateMissingPhotoDrawsPlaceholder(t *testing.T) {
	f := newFixture(t).withBackgrounds(t)

	tile := api.NewTile("basalt", "matt", "300x300", "")
	tile.WebPath = "/static/images/gone.png"
	tile.PhotoPath = f.path("static/images/gone.png")

	doc, err := f.renderer().RenderTemplate([]api.Tile{tile}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Pages)

	texts := pdftest.PageTexts(t, doc.Data)
	assert.Contains(t, texts[1], placeholderText)

	issues := doc.IssuesFor(StepPhoto)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Page)
	assert.Equal(t, "/static/images/gone.png", issues[0].Ref)
	assert.True(t, errors.Is(issues[0], ErrPhotoNotFound))
}

func TestTemplateTileWithoutPhotoIsRecorded(t *testing.T) {
	f := newFixture(t).withBackgrounds(t)

	doc, err := f.renderer().RenderTemplate(tiles("plain", "bare"), "")
	require.NoError(t, err)

	texts := pdftest.PageTexts(t, doc.Data)
	assert.Contains(t, texts[1], placeholderText)

	issues := doc.IssuesFor(StepPhoto)
	require.Len(t, issues, 2)
	assert.Equal(t, 2, issues[0].Page)
	assert.Equal(t, 3, issues[1].Page)
	assert.Empty(t, issues[0].Ref)
	assert.ErrorIs(t, issues[0], ErrNoPhoto)
}

func TestPhotoFallsBackToFilesystemPath(t *testing.T) {
	f := newFixture(t).withBackgrounds(t)
	src := imaging.New(6, 3, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	path := f.writeImage(t, "media/stone.png", src)

	tile := api.NewTile("stone", "", "", "")
	tile.WebPath = "/static/images/stone.png"
	tile.PhotoPath = path

	doc, err := f.renderer().RenderTemplate([]api.Tile{tile}, "")
	require.NoError(t, err)
	assert.Empty(t, doc.IssuesFor(StepPhoto))
	assert.NotContains(t, pdftest.PageTexts(t, doc.Data)[1], placeholderText)
	// poster, template and the photo
	assert.Len(t, pdftest.ExtractImages(t, doc.Data), 3)

	cards, err := f.renderer().RenderCards([]api.Tile{tile}, nil, "")
	require.NoError(t, err)
	assert.Empty(t, cards.IssuesFor(StepPhoto))
	assert.Len(t, pdftest.ExtractImages(t, cards.Data), 1)
}

func TestTemplateCorruptPhotoIsAbsorbed(t *testing.T) {
	f := newFixture(t).withBackgrounds(t)
	f.writeFile(t, "static/images/broken.png", "not a png at all")

	broken := api.NewTile("broken", "", "", "")
	broken.WebPath = "/static/images/broken.png"
	fine := api.NewTile("fine", "", "", "")
	fine.WebPath = "/static/images/fine.png"
	f.writeImage(t, "static/images/fine.png", imaging.New(4, 4, color.White))

	doc, err := f.renderer().RenderTemplate([]api.Tile{broken, fine}, "")
	require.NoError(t, err)
	pdftest.AssertPDFPageCount(t, doc.Data, 3)

	texts := pdftest.PageTexts(t, doc.Data)
	assert.Contains(t, texts[1], placeholderText)
	assert.NotContains(t, texts[2], placeholderText)
	require.Len(t, doc.IssuesFor(StepPhoto), 1)
	assert.Equal(t, 2, doc.IssuesFor(StepPhoto)[0].Page)
}

func TestTemplateMissingBackgroundsFallBack(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "static/tile_templates/notes.txt", "no images here")

	doc, err := f.renderer().RenderTemplate(tiles("a", "b"), "client")
	require.NoError(t, err)
	pdftest.AssertPDFPageCount(t, doc.Data, 3)

	posters := doc.IssuesFor(StepPoster)
	require.Len(t, posters, 1)
	assert.Equal(t, 1, posters[0].Page)
	assert.True(t, errors.Is(posters[0], ErrNoPoster))

	templates := doc.IssuesFor(StepTemplate)
	require.Len(t, templates, 2)
	assert.Equal(t, 2, templates[0].Page)
	assert.Equal(t, 3, templates[1].Page)
}

func TestTemplateCorruptTemplateFallsBack(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "static/tile_templates/a.png", "garbage")

	doc, err := f.renderer().RenderTemplate(tiles("a"), "")
	require.NoError(t, err)
	pdftest.AssertPDFPageCount(t, doc.Data, 2)

	templates := doc.IssuesFor(StepTemplate)
	require.Len(t, templates, 1)
	assert.False(t, errors.Is(templates[0], ErrNoTemplate))
}

func TestTemplateEmbedsPhotoPixels(t *testing.T) {
	f := newFixture(t)

	src := imaging.New(8, 4, color.NRGBA{R: 10, G: 120, B: 240, A: 255})
	src.Set(7, 3, color.NRGBA{R: 250, G: 250, B: 5, A: 255})
	f.writeImage(t, "static/images/photo.png", src)

	tile := api.NewTile("glacier", "", "", "")
	tile.WebPath = "/static/images/photo.png"

	doc, err := f.renderer().RenderTemplate([]api.Tile{tile}, "")
	require.NoError(t, err)
	assert.Empty(t, doc.IssuesFor(StepPhoto))

	images := pdftest.ExtractImages(t, doc.Data)
	require.Len(t, images, 1)
	assert.Equal(t, src.Bounds(), images[0].Bounds())
	assert.Equal(t, src.Pix, imaging.Clone(images[0]).Pix)
}

func TestTemplateReusesBackgroundImage(t *testing.T) {
	f := newFixture(t).withBackgrounds(t)

	doc, err := f.renderer().RenderTemplate(tiles("a", "b", "c"), "")
	require.NoError(t, err)
	// poster and template, each embedded once
	assert.Len(t, pdftest.ExtractImages(t, doc.Data), 2)
}

func TestCardsPaginateWithFooterPerPage(t *testing.T) {
	f := newFixture(t)
	company := &api.Company{Name: "Stone House", Phone: "555 0101", Email: "hello@stone.house"}

	doc, err := f.renderer().RenderCards(tiles("a", "b", "c", "d", "e"), company, "Acme")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Pages)
	pdftest.AssertPDFPageCount(t, doc.Data, 2)

	texts := pdftest.PageTexts(t, doc.Data)
	require.Len(t, texts, 2)
	for i, text := range texts {
		assert.Equal(t, 1, strings.Count(text, "Page "), "page %d", i+1)
		assert.Contains(t, text, "Page "+string(rune('1'+i)))
		assert.Contains(t, text, DefaultTitle)
		assert.Contains(t, text, "Client: Acme")
		assert.Contains(t, text, "Date: 18 Oct 2026")
		assert.Contains(t, text, company.FooterLine())
	}
}

func TestCardsFillPageBeforeBreaking(t *testing.T) {
	f := newFixture(t)
	r := f.renderer()

	doc, err := r.RenderCards(nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages)

	doc, err = r.RenderCards(tiles("a", "b", "c", "d"), nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages)

	doc, err = r.RenderCards(tiles("a", "b", "c", "d", "e", "f", "g", "h", "i"), nil, "")
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Pages)

	texts := pdftest.PageTexts(t, doc.Data)
	assert.NotContains(t, texts[0], "Client:")
	assert.Contains(t, texts[2], "Page 3")
}

func TestCardsTruncateText(t *testing.T) {
	f := newFixture(t)

	tile := api.Tile{
		Name:        strings.Repeat("N", maxNameRunes) + "OVERFLOW",
		SKU:         "SKU-9",
		Size:        "300x600",
		Price:       "42.50",
		Description: strings.Repeat("d", maxDescriptionRunes) + "TAIL",
	}
	doc, err := f.renderer().RenderCards([]api.Tile{tile}, nil, "")
	require.NoError(t, err)

	text := pdftest.PageTexts(t, doc.Data)[0]
	assert.Contains(t, text, strings.Repeat("N", maxNameRunes))
	assert.NotContains(t, text, "OVERFLOW")
	assert.Contains(t, text, "SKU: SKU-9  |  Size: 300x600")
	assert.Contains(t, text, "Price: 42.50")
	assert.Contains(t, text, strings.Repeat("d", maxDescriptionRunes))
	assert.NotContains(t, text, "TAIL")
}

func TestCardsImagesAndLogo(t *testing.T) {
	f := newFixture(t)
	f.writeImage(t, "static/images/big.png", imaging.New(2000, 1000, color.NRGBA{G: 200, A: 255}))
	f.writeImage(t, "static/logo/logo.png", imaging.New(60, 20, color.NRGBA{B: 200, A: 255}))

	withPhoto := api.NewTile("big", "", "", "")
	withPhoto.WebPath = "/static/images/big.png"
	missing := api.NewTile("missing", "", "", "")
	missing.PhotoPath = "static/images/none.png"

	doc, err := f.renderer().RenderCards([]api.Tile{withPhoto, missing}, &api.Company{LogoPath: "static/logo/logo.png"}, "")
	require.NoError(t, err)
	assert.Empty(t, doc.IssuesFor(StepLogo))
	require.Len(t, doc.IssuesFor(StepPhoto), 1)
	assert.Equal(t, "static/images/none.png", doc.IssuesFor(StepPhoto)[0].Ref)

	images := pdftest.ExtractImages(t, doc.Data)
	require.Len(t, images, 2)
	for _, img := range images {
		// thumbnails are downscaled before embedding
		assert.Less(t, img.Bounds().Dx(), 2000)
	}
}

func TestCardsMissingLogoIsAbsorbed(t *testing.T) {
	f := newFixture(t)

	doc, err := f.renderer().RenderCards(tiles("a", "b", "c", "d", "e"), &api.Company{Name: "X", LogoPath: "static/logo/nope.png"}, "")
	require.NoError(t, err)

	logos := doc.IssuesFor(StepLogo)
	require.Len(t, logos, 2, "header repeats on every page")
	assert.True(t, errors.Is(logos[0], ErrLogoNotFound))
	assert.Equal(t, 1, logos[0].Page)
	assert.Equal(t, 2, logos[1].Page)
}

func TestRenderersDoNotShareState(t *testing.T) {
	f := newFixture(t).withBackgrounds(t)
	r := f.renderer()

	first, err := r.RenderTemplate(tiles("a"), "")
	require.NoError(t, err)
	second, err := r.RenderTemplate(tiles("a"), "")
	require.NoError(t, err)
	assert.Equal(t, first.Pages, second.Pages)
	assert.Equal(t, first.Data, second.Data)
}

func TestInventory(t *testing.T) {
	r := newFixture(t).renderer()

	doc, err := r.RenderInventory(tiles("a", "b", "c"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc.Data), "%PDF"))
	assert.GreaterOrEqual(t, doc.Pages, 1)

	names := make([]string, 120)
	for i := range names {
		names[i] = "tile"
	}
	long, err := r.RenderInventory(tiles(names...), "Inventory")
	require.NoError(t, err)
	assert.Greater(t, long.Pages, doc.Pages)

	empty, err := r.RenderInventory(nil, "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, empty.Pages, 1)
}

func TestFit(t *testing.T) {
	box := Rect{X: 10, Y: 20, W: 100, H: 100}

	assert.Equal(t, Rect{X: 10, Y: 45, W: 100, H: 50}, Fit(box, 200, 100, AnchorCenter))
	assert.Equal(t, Rect{X: 10, Y: 20, W: 100, H: 50}, Fit(box, 200, 100, AnchorTopLeft))
	assert.Equal(t, Rect{X: 10, Y: 45, W: 100, H: 50}, Fit(box, 200, 100, AnchorLeft))
	assert.Equal(t, Rect{X: 35, Y: 20, W: 50, H: 100}, Fit(box, 10, 20, AnchorCenter))
	assert.Equal(t, Rect{X: 10, Y: 20}, Fit(box, 0, 20, AnchorCenter))
}

func TestRendererColors(t *testing.T) {
	r := New(Options{})
	assert.Equal(t, White, r.overlay)
	assert.Equal(t, Slate, r.fallback)

	r = New(Options{OverlayColor: "#000", FallbackColor: "102030"})
	assert.Equal(t, Black, r.overlay)
	assert.Equal(t, Color{16, 32, 48}, r.fallback)

	f := newFixture(t)
	doc, err := New(Options{
		PosterDir:     f.path("static/posters"),
		TemplateDir:   f.path("static/tile_templates"),
		Resolver:      assets.NewResolver(f.root),
		FallbackColor: "#102030",
	}).RenderTemplate(tiles("a"), "client")
	require.NoError(t, err)
	pdftest.AssertPDFPageCount(t, doc.Data, 2)
	assert.Len(t, doc.IssuesFor(StepPoster), 1)
}

func TestHex(t *testing.T) {
	assert.Equal(t, Slate, Hex("#424754"))
	assert.Equal(t, White, Hex("fff"))
	assert.Equal(t, Black, Hex("nonsense"))
}
