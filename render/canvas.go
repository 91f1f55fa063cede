package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// mm converts millimetres to points
const mm = 72.0 / 25.4

// Rect is an axis aligned box in points, origin at the top left of the page
type Rect struct {
	X, Y, W, H float64
}

// Anchor places a scaled image inside its box
type Anchor int

const (
	// AnchorCenter centers the image in both directions
	AnchorCenter Anchor = iota
	// AnchorTopLeft pins the image to the top left corner
	AnchorTopLeft
	// AnchorLeft pins the image to the left edge, vertically centered
	AnchorLeft
)

// Canvas wraps gofpdf for absolute positioned drawing on A4 pages in points
type Canvas struct {
	pdf       *gofpdf.Fpdf
	translate func(string) string
	width     float64
	height    float64
	created   time.Time
}

// CanvasOption is a function that configures a Canvas
type CanvasOption func(*Canvas)

// WithCreationDate fixes the document creation timestamp
func WithCreationDate(t time.Time) CanvasOption {
	return func(c *Canvas) {
		c.created = t
	}
}

// NewCanvas creates an empty A4 portrait document
func NewCanvas(title string, opts ...CanvasOption) *Canvas {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("tilecat", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}

	c := &Canvas{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
	c.width, c.height = pdf.GetPageSize()

	for _, opt := range opts {
		opt(c)
	}
	if !c.created.IsZero() {
		pdf.SetCreationDate(c.created)
	}
	return c
}

// Width of the page in points
func (c *Canvas) Width() float64 { return c.width }

// Height of the page in points
func (c *Canvas) Height() float64 { return c.height }

// Page returns the full page box
func (c *Canvas) Page() Rect { return Rect{W: c.width, H: c.height} }

// AddPage starts a new page and returns its 1-based number
func (c *Canvas) AddPage() int {
	c.pdf.AddPage()
	return c.pdf.PageNo()
}

// PageCount returns the number of emitted pages
func (c *Canvas) PageCount() int {
	return c.pdf.PageCount()
}

// SetFont selects a core font style ("", "B", "I", "BI") and size in points
func (c *Canvas) SetFont(style string, size float64) {
	c.pdf.SetFont("Helvetica", style, size)
}

// SetTextColor sets the color used for subsequent text
func (c *Canvas) SetTextColor(col Color) {
	c.pdf.SetTextColor(col.R, col.G, col.B)
}

// FillRect paints a solid rectangle
func (c *Canvas) FillRect(r Rect, col Color) {
	c.pdf.SetFillColor(col.R, col.G, col.B)
	c.pdf.Rect(r.X, r.Y, r.W, r.H, "F")
}

// StringWidth measures s in the current font
func (c *Canvas) StringWidth(s string) float64 {
	return c.pdf.GetStringWidth(c.translate(s))
}

// Text draws s with its baseline at y, starting at x
func (c *Canvas) Text(x, y float64, s string) {
	c.pdf.Text(x, y, c.translate(s))
}

// TextCentered draws s centered on x
func (c *Canvas) TextCentered(x, y float64, s string) {
	c.Text(x-c.StringWidth(s)/2, y, s)
}

// TextRight draws s so that it ends at x
func (c *Canvas) TextRight(x, y float64, s string) {
	c.Text(x-c.StringWidth(s), y, s)
}

// RegisterImage embeds encoded image data under name. A failure is returned
// and the document stays usable.
func (c *Canvas) RegisterImage(name, kind string, data []byte) error {
	c.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: kind}, bytes.NewReader(data))
	if err := c.takeError(); err != nil {
		return fmt.Errorf("failed to embed image %s: %w", name, err)
	}
	return nil
}

// DrawImage places a registered image stretched over r
func (c *Canvas) DrawImage(name string, r Rect) error {
	c.pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, gofpdf.ImageOptions{}, 0, "")
	if err := c.takeError(); err != nil {
		return fmt.Errorf("failed to draw image %s: %w", name, err)
	}
	return nil
}

// Fit scales an image of pixel size w x h into box preserving its aspect ratio
func Fit(box Rect, w, h int, anchor Anchor) Rect {
	if w <= 0 || h <= 0 || box.W <= 0 || box.H <= 0 {
		return Rect{X: box.X, Y: box.Y}
	}
	scale := box.W / float64(w)
	if s := box.H / float64(h); s < scale {
		scale = s
	}
	out := Rect{W: float64(w) * scale, H: float64(h) * scale}
	switch anchor {
	case AnchorTopLeft:
		out.X, out.Y = box.X, box.Y
	case AnchorLeft:
		out.X, out.Y = box.X, box.Y+(box.H-out.H)/2
	default:
		out.X, out.Y = box.X+(box.W-out.W)/2, box.Y+(box.H-out.H)/2
	}
	return out
}

// takeError returns and clears the sticky gofpdf error
func (c *Canvas) takeError() error {
	if !c.pdf.Err() {
		return nil
	}
	err := c.pdf.Error()
	c.pdf.ClearError()
	return err
}

// Output finalizes the document
func (c *Canvas) Output() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
