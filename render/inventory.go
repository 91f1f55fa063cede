package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/flanksource/tilecat/api"
)

type inventoryColumn struct {
	title string
	width int
	align align.Type
	value func(api.Tile) string
}

var inventoryColumns = []inventoryColumn{
	{"ID", 1, align.Right, func(t api.Tile) string { return strconv.FormatInt(t.ID, 10) }},
	{"Name", 4, align.Left, func(t api.Tile) string { return t.Name }},
	{"Size", 2, align.Left, func(t api.Tile) string { return t.Size }},
	{"Finish", 3, align.Left, func(t api.Tile) string { return t.Finish }},
	{"Photo", 2, align.Center, func(t api.Tile) string {
		if t.HasPhoto() {
			return "yes"
		}
		return "no"
	}},
}

var stripe = &props.Color{Red: 248, Green: 248, Blue: 248}

// RenderInventory lists every tile in a table with a repeating header
func (r *Renderer) RenderInventory(tiles []api.Tile, title string) (*Document, error) {
	if title == "" {
		title = r.opts.Title
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithRightMargin(10).
		WithTopMargin(10).
		WithBottomMargin(10).
		Build()
	m := maroto.New(cfg)

	header := []core.Row{
		row.New(12).Add(col.New(12).Add(text.New(title, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Align: align.Center,
		}))),
		tableHeader(),
		rule(),
	}
	if err := m.RegisterHeader(header...); err != nil {
		return nil, fmt.Errorf("failed to register header: %w", err)
	}

	footer := row.New(8).Add(col.New(12).Add(text.New(
		fmt.Sprintf("%d tiles  |  generated %s", len(tiles), r.opts.Now().Format("02 Jan 2006")),
		props.Text{Size: 7, Align: align.Right, Color: Muted.Props()},
	)))
	if err := m.RegisterFooter(footer); err != nil {
		return nil, fmt.Errorf("failed to register footer: %w", err)
	}

	for i, tile := range tiles {
		cols := make([]core.Col, 0, len(inventoryColumns))
		for _, c := range inventoryColumns {
			cell := col.New(c.width).Add(text.New(c.value(tile), props.Text{
				Size:  9,
				Top:   1.5,
				Left:  1,
				Right: 1,
				Align: c.align,
			}))
			if i%2 == 1 {
				cell = cell.WithStyle(&props.Cell{BackgroundColor: stripe})
			}
			cols = append(cols, cell)
		}
		m.AddRow(7, cols...)
	}
	if len(tiles) == 0 {
		m.AddRow(10, col.New(12).Add(text.New("No tiles in the catalog", props.Text{
			Size:  9,
			Style: fontstyle.Italic,
			Align: align.Center,
			Color: Muted.Props(),
		})))
	}

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	data := document.GetBytes()

	ctx, err := pdfapi.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read generated PDF: %w", err)
	}

	r.log.Infof("rendered inventory: %d tiles, %d pages", len(tiles), ctx.PageCount)
	return &Document{Data: data, Pages: ctx.PageCount}, nil
}

func tableHeader() core.Row {
	cols := make([]core.Col, 0, len(inventoryColumns))
	for _, c := range inventoryColumns {
		cols = append(cols, col.New(c.width).Add(text.New(c.title, props.Text{
			Size:  9,
			Style: fontstyle.Bold,
			Top:   1.5,
			Left:  1,
			Right: 1,
			Align: c.align,
		})).WithStyle(&props.Cell{BackgroundColor: &props.Color{Red: 230, Green: 230, Blue: 230}}))
	}
	return row.New(7).Add(cols...)
}

// rule is a thin separator below the header
func rule() core.Row {
	return row.New(0.5).Add(col.New(12).Add(line.New(props.Line{
		Color:     &props.Color{Red: 200, Green: 200, Blue: 200},
		Thickness: 0.2,
	})))
}
