// Package importer reads tile catalogs from spreadsheets.
//
// The sheet layout is fixed: row 1 is a header, then one tile per row with
// the columns name, SKU, size, price, description and finish (A to F) and an
// optional picture anchored in column G.
package importer

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/xuri/excelize/v2"

	"github.com/flanksource/tilecat/api"
	"github.com/flanksource/tilecat/assets"
)

const (
	colName = iota
	colSKU
	colSize
	colPrice
	colDescription
	colFinish
	colImage
)

// headerRows is the number of leading rows that never hold tiles
const headerRows = 1

// ImageSaver persists a decoded picture and returns its references
type ImageSaver interface {
	SavePNG(img image.Image) (assets.Stored, error)
}

// Issue is a failure absorbed while importing a row
type Issue struct {
	Row  int
	Cell string
	Err  error
}

func (i Issue) Error() string {
	return fmt.Sprintf("row %d (%s): %v", i.Row, i.Cell, i.Err)
}

// Result is the outcome of one spreadsheet import
type Result struct {
	Tiles   []api.Tile
	Rows    int
	Skipped int
	Issues  []Issue
}

// Importer turns spreadsheet rows into tiles
type Importer struct {
	images ImageSaver
	log    logger.Logger
}

// New creates an importer that stores pictures with images
func New(images ImageSaver) *Importer {
	return &Importer{images: images, log: logger.GetLogger("importer")}
}

// Import reads the active sheet of the workbook in r. Only a workbook that
// cannot be read is an error; row level problems are reported in the result.
// When ctx is cancelled mid sheet, the rows read so far are returned with the
// error so the caller can remove the pictures already stored.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	pictureCells, err := f.GetPictureCells(sheet)
	if err != nil {
		im.log.Warnf("failed to list pictures of sheet %q: %v", sheet, err)
	}
	anchored := make(map[string]bool, len(pictureCells))
	for _, cell := range pictureCells {
		anchored[cell] = true
	}

	result := &Result{}
	for i, row := range rows {
		if i < headerRows {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rowNum := i + 1
		result.Rows++

		name := cellValue(row, colName)
		if strings.TrimSpace(name) == "" {
			result.Skipped++
			continue
		}

		tile := api.Tile{
			Name:        name,
			SKU:         cellValue(row, colSKU),
			Size:        cellValue(row, colSize),
			Price:       cellValue(row, colPrice),
			Description: cellValue(row, colDescription),
			Finish:      cellValue(row, colFinish),
		}
		tile.Normalize()

		cell, _ := excelize.CoordinatesToCellName(colImage+1, rowNum)
		if anchored[cell] {
			if stored, err := im.importPicture(f, sheet, cell); err != nil {
				issue := Issue{Row: rowNum, Cell: cell, Err: err}
				im.log.Warnf("image import error: %v", issue)
				result.Issues = append(result.Issues, issue)
			} else {
				tile.PhotoPath = stored.Path
				tile.WebPath = stored.WebPath
			}
		}

		result.Tiles = append(result.Tiles, tile)
	}

	im.log.Infof("read %d tiles from %d rows (%d skipped, %d image issues)",
		len(result.Tiles), result.Rows, result.Skipped, len(result.Issues))
	return result, nil
}

// importPicture decodes the first picture anchored at cell and stores it as PNG
func (im *Importer) importPicture(f *excelize.File, sheet, cell string) (assets.Stored, error) {
	pics, err := f.GetPictures(sheet, cell)
	if err != nil {
		return assets.Stored{}, fmt.Errorf("failed to read picture: %w", err)
	}
	if len(pics) == 0 {
		return assets.Stored{}, fmt.Errorf("no picture data at %s", cell)
	}
	img, err := assets.DecodeBytes(pics[0].File)
	if err != nil {
		return assets.Stored{}, err
	}
	return im.images.SavePNG(img)
}

// cellValue returns the text of column idx, or "" for a missing cell
func cellValue(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
