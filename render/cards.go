package render

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/flanksource/tilecat/api"
)

// Card grid geometry, in points
const (
	cardColumns  = 2
	cardMarginX  = 15 * mm
	cardMarginY  = 20 * mm
	cardGapX     = 8 * mm
	cardGapY     = 8 * mm
	cardHeight   = 70 * mm
	cardImageH   = 0.58 * cardHeight
	cardInset    = 4 * mm
	cardTextX    = 6 * mm
	cardLineStep = 12
	// headerBand and footerBand are reserved above and below the grid
	headerBand = 30 * mm
	footerBand = 30 * mm

	logoHeight   = 18 * mm
	logoMaxWidth = 60 * mm

	maxNameRunes        = 40
	maxDescriptionRunes = 120

	// thumbnailScale is the embedded pixel density of card images, per point
	thumbnailScale = 2
)

// RenderCards draws the tiles as a paginated two column grid. Every page gets
// the header and, once its cards are placed, the footer with its page number.
func (r *Renderer) RenderCards(tiles []api.Tile, company *api.Company, clientName string) (*Document, error) {
	d := r.newDrawing(r.opts.Title)
	clientName = strings.TrimSpace(clientName)
	page := d.canvas.Page()

	cardW := (page.W - 2*cardMarginX - cardGapX*(cardColumns-1)) / cardColumns
	top := cardMarginY + headerBand
	bottom := page.H - cardMarginY - footerBand

	d.canvas.AddPage()
	r.drawCardHeader(d, company, clientName)

	y := top
	for i, tile := range tiles {
		column := i % cardColumns
		if column == 0 && i > 0 {
			y += cardHeight + cardGapY
		}
		if column == 0 && y+cardHeight > bottom && y > top {
			r.drawCardFooter(d, company)
			d.canvas.AddPage()
			r.drawCardHeader(d, company, clientName)
			y = top
		}
		x := cardMarginX + float64(column)*(cardW+cardGapX)
		r.drawCard(d, tile, Rect{X: x, Y: y, W: cardW, H: cardHeight})
	}
	r.drawCardFooter(d, company)

	doc, err := d.finish()
	if err != nil {
		return nil, err
	}
	r.log.Infof("rendered card catalog: %d tiles, %d pages, %d issues", len(tiles), doc.Pages, len(doc.Issues))
	return doc, nil
}

func (r *Renderer) drawCardHeader(d *drawing, company *api.Company, clientName string) {
	page := d.canvas.Page()

	if company != nil && company.LogoPath != "" {
		box := Rect{X: cardMarginX, Y: headerBand - logoHeight, W: logoMaxWidth, H: logoHeight}
		if path, ok := r.opts.Resolver.Resolve(company.LogoPath); !ok {
			d.absorb(StepLogo, company.LogoPath, ErrLogoNotFound)
		} else if err := d.fit(path, box, AnchorLeft, 0, 0); err != nil {
			d.absorb(StepLogo, company.LogoPath, err)
		}
	}

	d.canvas.SetTextColor(Black)
	d.canvas.SetFont("B", 16)
	d.canvas.TextCentered(page.W/2, 20*mm, r.opts.Title)

	d.canvas.SetFont("", 9)
	if clientName != "" {
		d.canvas.TextRight(page.W-cardMarginX, 15*mm, "Client: "+clientName)
	}
	d.canvas.TextRight(page.W-cardMarginX, 20*mm, "Date: "+r.opts.Now().Format("02 Jan 2006"))
}

func (r *Renderer) drawCardFooter(d *drawing, company *api.Company) {
	page := d.canvas.Page()
	y := page.H - 12*mm

	d.canvas.SetTextColor(Muted)
	d.canvas.SetFont("", 8)
	if !company.IsEmpty() {
		d.canvas.TextCentered(page.W/2, y, company.FooterLine())
	}
	d.canvas.TextRight(page.W-cardMarginX, y, fmt.Sprintf("Page %d", d.canvas.pdf.PageNo()))
}

func (r *Renderer) drawCard(d *drawing, tile api.Tile, card Rect) {
	box := Rect{X: card.X + cardInset, Y: card.Y, W: card.W - 2*cardInset, H: cardImageH}
	r.drawThumbnail(d, tile, box)

	x := card.X + cardTextX
	y := card.Y + cardImageH + 6*mm

	d.canvas.SetTextColor(Black)
	d.canvas.SetFont("B", 10)
	d.canvas.Text(x, y, lo.Substring(tile.Name, 0, maxNameRunes))

	d.canvas.SetFont("", 8)
	d.canvas.Text(x, y+cardLineStep, fmt.Sprintf("SKU: %s  |  Size: %s", tile.SKU, tile.Size))
	d.canvas.Text(x, y+2*cardLineStep, "Price: "+tile.Price)

	if tile.Description != "" {
		d.canvas.SetFont("I", 7)
		d.canvas.Text(x, y+3*cardLineStep, lo.Substring(tile.Description, 0, maxDescriptionRunes))
	}
}

// drawThumbnail draws a downscaled tile photo anchored to the top left of box
func (r *Renderer) drawThumbnail(d *drawing, tile api.Tile, box Rect) {
	path, ref, ok := r.photo(d, tile)
	if !ok {
		return
	}
	maxW, maxH := int(box.W*thumbnailScale), int(box.H*thumbnailScale)
	if err := d.fit(path, box, AnchorTopLeft, maxW, maxH); err != nil {
		d.absorb(StepPhoto, ref, err)
	}
}
