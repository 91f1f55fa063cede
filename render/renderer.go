// Package render composes tile catalogs into PDF documents.
//
// Two independent layouts are available: RenderTemplate draws a poster cover
// followed by one page per tile, RenderCards draws a paginated two column
// grid of tile cards with a repeating header and footer. Missing or
// unreadable images never fail a render; each is drawn with a fallback and
// reported as an Issue on the returned Document.
package render

import (
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/flanksource/commons/logger"

	"github.com/flanksource/tilecat/api"
	"github.com/flanksource/tilecat/assets"
)

// DefaultTitle is printed in the card layout header when Options.Title is empty
const DefaultTitle = "Tile Catalog / Quotation"

// Options configures a Renderer
type Options struct {
	// PosterDir holds the candidate cover images
	PosterDir string
	// TemplateDir holds the candidate tile page backgrounds
	TemplateDir string
	// Resolver locates tile photos and logos from their stored references
	Resolver assets.Resolver
	// Title of the card layout header
	Title string
	// Now is the clock used for the card layout date, time.Now when nil
	Now func() time.Time
	// OverlayColor is the hex color of the text drawn over posters and
	// templates, white when empty
	OverlayColor string
	// FallbackColor is the hex color filling a page whose background image is
	// missing, Slate when empty
	FallbackColor string
}

// Renderer draws catalogs. It holds configuration only and is safe to reuse.
type Renderer struct {
	opts     Options
	overlay  Color
	fallback Color
	log      logger.Logger
}

// New creates a Renderer
func New(opts Options) *Renderer {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Renderer{opts: opts, overlay: White, fallback: Slate, log: logger.GetLogger("render")}
	if opts.OverlayColor != "" {
		r.overlay = Hex(opts.OverlayColor)
	}
	if opts.FallbackColor != "" {
		r.fallback = Hex(opts.FallbackColor)
	}
	return r
}

// placed is an image registered with the canvas
type placed struct {
	name          string
	width, height int
}

// drawing is the state of a single render
type drawing struct {
	canvas *Canvas
	issues []Issue
	images map[string]placed
	log    logger.Logger
}

func (r *Renderer) newDrawing(title string) *drawing {
	return &drawing{
		canvas: NewCanvas(title, WithCreationDate(r.opts.Now())),
		images: make(map[string]placed),
		log:    r.log,
	}
}

// absorb records a failure on the current page and logs it
func (d *drawing) absorb(step Step, ref string, err error) {
	issue := Issue{Page: d.canvas.pdf.PageNo(), Step: step, Ref: ref, Err: err}
	d.log.Warnf("%v", issue)
	d.issues = append(d.issues, issue)
}

// image registers the image at path once per document. maxW and maxH, when
// positive, bound the embedded pixel size.
func (d *drawing) image(path string, maxW, maxH int) (placed, error) {
	key := fmt.Sprintf("%s@%dx%d", path, maxW, maxH)
	if p, ok := d.images[key]; ok {
		return p, nil
	}

	img, err := assets.LoadImage(path)
	if err != nil {
		return placed{}, err
	}
	if maxW > 0 && maxH > 0 {
		img.Image = imaging.Fit(img.Image, maxW, maxH, imaging.Lanczos)
	}
	data, kind, err := img.Encode()
	if err != nil {
		return placed{}, err
	}

	p := placed{name: fmt.Sprintf("img%d", len(d.images)+1), width: img.Width(), height: img.Height()}
	if err := d.canvas.RegisterImage(p.name, kind, data); err != nil {
		return placed{}, err
	}
	d.images[key] = p
	return p, nil
}

// photo resolves the first existing photo reference of tile. A tile without
// any reference and one whose references all miss are both recorded.
func (r *Renderer) photo(d *drawing, tile api.Tile) (path, ref string, ok bool) {
	refs := tile.PhotoRefs()
	if len(refs) == 0 {
		d.absorb(StepPhoto, "", ErrNoPhoto)
		return "", "", false
	}
	for _, ref := range refs {
		if path, ok := r.opts.Resolver.Resolve(ref); ok {
			return path, ref, true
		}
	}
	d.absorb(StepPhoto, refs[0], ErrPhotoNotFound)
	return "", "", false
}

// stretch draws the image at path over box, ignoring its aspect ratio
func (d *drawing) stretch(path string, box Rect) error {
	p, err := d.image(path, 0, 0)
	if err != nil {
		return err
	}
	return d.canvas.DrawImage(p.name, box)
}

// fit draws the image at path inside box, preserving its aspect ratio
func (d *drawing) fit(path string, box Rect, anchor Anchor, maxW, maxH int) error {
	p, err := d.image(path, maxW, maxH)
	if err != nil {
		return err
	}
	return d.canvas.DrawImage(p.name, Fit(box, p.width, p.height, anchor))
}

func (d *drawing) finish() (*Document, error) {
	pages := d.canvas.PageCount()
	data, err := d.canvas.Output()
	if err != nil {
		return nil, err
	}
	return &Document{Data: data, Pages: pages, Issues: d.issues}, nil
}
