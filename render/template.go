package render

import (
	"strings"

	"github.com/flanksource/tilecat/api"
	"github.com/flanksource/tilecat/assets"
)

const (
	overlayFontSize = 18
	// textInset is the distance of overlay text from the page edges
	textInset = 40
	// nameBaseline and finishBaseline are measured up from the page bottom
	nameBaseline   = 60
	finishBaseline = 40
	// photoBoxW and photoBoxH bound the tile photo as fractions of the page
	photoBoxW = 0.70
	photoBoxH = 0.65
	// clientBandLow and clientBandHigh delimit the cover band holding the client line
	clientBandLow  = 0.08
	clientBandHigh = 0.18
	clientFontSize = 28

	placeholderText = "NO IMAGE FOUND"
)

// RenderTemplate draws a cover page followed by one page per tile, in order.
// A cover is always emitted, so an empty tile list yields a single page.
func (r *Renderer) RenderTemplate(tiles []api.Tile, clientName string) (*Document, error) {
	d := r.newDrawing(r.opts.Title)

	d.canvas.AddPage()
	r.drawCover(d, strings.TrimSpace(clientName))

	for _, tile := range tiles {
		d.canvas.AddPage()
		r.drawTilePage(d, tile)
	}

	doc, err := d.finish()
	if err != nil {
		return nil, err
	}
	r.log.Infof("rendered template catalog: %d tiles, %d pages, %d issues", len(tiles), doc.Pages, len(doc.Issues))
	return doc, nil
}

func (r *Renderer) drawCover(d *drawing, clientName string) {
	page := d.canvas.Page()

	if poster, ok := assets.Discover(r.opts.PosterDir, assets.PosterNames...); !ok {
		d.absorb(StepPoster, r.opts.PosterDir, ErrNoPoster)
		d.canvas.FillRect(page, r.fallback)
	} else if err := d.stretch(poster, page); err != nil {
		d.absorb(StepPoster, poster, err)
		d.canvas.FillRect(page, r.fallback)
	}

	if clientName == "" {
		return
	}
	// The band is measured from the bottom, the canvas origin is at the top
	bandMid := (clientBandLow + clientBandHigh) / 2 * page.H
	d.canvas.SetFont("B", clientFontSize)
	d.canvas.SetTextColor(r.overlay)
	d.canvas.TextCentered(page.W/2, page.H-bandMid+24, "Client: "+clientName)
}

func (r *Renderer) drawTilePage(d *drawing, tile api.Tile) {
	page := d.canvas.Page()

	if tmpl, ok := assets.Discover(r.opts.TemplateDir); !ok {
		d.absorb(StepTemplate, r.opts.TemplateDir, ErrNoTemplate)
		d.canvas.FillRect(page, r.fallback)
	} else if err := d.stretch(tmpl, page); err != nil {
		d.absorb(StepTemplate, tmpl, err)
		d.canvas.FillRect(page, r.fallback)
	}

	d.canvas.SetFont("B", overlayFontSize)
	d.canvas.SetTextColor(r.overlay)

	box := Rect{W: page.W * photoBoxW, H: page.H * photoBoxH}
	box.X = (page.W - box.W) / 2
	box.Y = (page.H - box.H) / 2
	if !r.drawPhoto(d, tile, box) {
		d.canvas.TextCentered(page.W/2, page.H/2, placeholderText)
	}

	if tile.Size != "" {
		d.canvas.TextRight(page.W-textInset, textInset, strings.ToUpper(tile.Size))
	}

	finishY := page.H - nameBaseline
	if tile.Name != "" {
		d.canvas.Text(textInset, page.H-nameBaseline, "DESIGN NAME :- "+tile.Name)
		finishY = page.H - finishBaseline
	}
	if tile.Finish != "" {
		d.canvas.Text(textInset, finishY, "FINISH :- "+tile.Finish)
	}
}

// drawPhoto draws the tile photo centered in box and reports whether it was drawn
func (r *Renderer) drawPhoto(d *drawing, tile api.Tile, box Rect) bool {
	path, ref, ok := r.photo(d, tile)
	if !ok {
		return false
	}
	if err := d.fit(path, box, AnchorCenter, 0, 0); err != nil {
		d.absorb(StepPhoto, ref, err)
		return false
	}
	return true
}
