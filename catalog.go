// Package tilecat manages a tile catalog: tiles are added one by one or
// imported from spreadsheets, and selections are rendered to PDF catalogs.
package tilecat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"

	"github.com/flanksource/tilecat/api"
	"github.com/flanksource/tilecat/assets"
	"github.com/flanksource/tilecat/config"
	"github.com/flanksource/tilecat/importer"
	"github.com/flanksource/tilecat/render"
	"github.com/flanksource/tilecat/store"
)

// InventoryFileName is the document name of the inventory listing
const InventoryFileName = "inventory.pdf"

// Catalog wires storage, image files, the spreadsheet importer and the renderer
type Catalog struct {
	config   *config.Config
	store    *store.Store
	images   *assets.ImageStore
	logos    *assets.ImageStore
	uploads  *assets.ImageStore
	importer *importer.Importer
	renderer *render.Renderer
}

// Open prepares the directories of cfg and opens its database
func Open(cfg *config.Config) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	resolver := assets.NewResolver(cfg.RootDir())

	images, err := assets.NewImageStore(cfg.Path(cfg.ImagesDir), cfg.ImagesWeb, resolver)
	if err != nil {
		return nil, err
	}
	logos, err := assets.NewImageStore(cfg.Path(cfg.LogoDir), "/static/logo/", resolver)
	if err != nil {
		return nil, err
	}
	uploads, err := assets.NewImageStore(cfg.Path(cfg.UploadsDir), "/uploads/", resolver)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(store.Config{DBPath: cfg.Path(cfg.Database)})
	if err != nil {
		return nil, err
	}

	return &Catalog{
		config:   cfg,
		store:    db,
		images:   images,
		logos:    logos,
		uploads:  uploads,
		importer: importer.New(images),
		renderer: render.New(render.Options{
			PosterDir:     cfg.Path(cfg.PosterDir),
			TemplateDir:   cfg.Path(cfg.TemplateDir),
			Resolver:      resolver,
			Title:         cfg.CatalogTitle,
			OverlayColor:  cfg.OverlayColor,
			FallbackColor: cfg.FallbackColor,
		}),
	}, nil
}

// Close releases the database
func (c *Catalog) Close() error {
	return c.store.Close()
}

// Config returns the configuration the catalog was opened with
func (c *Catalog) Config() *config.Config {
	return c.config
}

// TileUpload is a single tile submitted by hand
type TileUpload struct {
	Name        string
	Size        string
	Finish      string
	Description string
	// PhotoName is the original file name of Photo
	PhotoName string
	Photo     []byte
}

// UploadTile stores a tile and its optional photo
func (c *Catalog) UploadTile(ctx context.Context, u TileUpload) (*api.Tile, error) {
	if strings.TrimSpace(u.Name) == "" {
		return nil, api.ErrNameRequired
	}
	tile := api.NewTile(u.Name, u.Finish, u.Size, u.Description)

	if len(u.Photo) > 0 {
		if !assets.IsImageFile(u.PhotoName) {
			return nil, fmt.Errorf("unsupported photo %q, expected one of %s",
				u.PhotoName, strings.Join(assets.ImageExtensions, ", "))
		}
		stored, err := c.images.SaveUpload(u.PhotoName, u.Photo)
		if err != nil {
			return nil, err
		}
		tile.PhotoPath = stored.Path
		tile.WebPath = stored.WebPath
	}

	if err := c.store.Create(ctx, &tile); err != nil {
		c.removePhoto(tile)
		return nil, err
	}
	logger.Infof("added tile %d %s", tile.ID, tile.Name)
	return &tile, nil
}

// ImportSpreadsheet keeps a copy of the uploaded workbook, then imports all
// of its tiles in a single batch
func (c *Catalog) ImportSpreadsheet(ctx context.Context, originalName string, r io.Reader) (*importer.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", originalName, err)
	}
	saved, err := c.uploads.SaveUpload(originalName, data)
	if err != nil {
		return nil, err
	}
	logger.Debugf("saved spreadsheet %s to %s", originalName, saved.Path)

	result, err := c.importer.Import(ctx, bytes.NewReader(data))
	if err != nil {
		if result != nil {
			c.removePhotos(result.Tiles)
		}
		return nil, fmt.Errorf("failed to import %s: %w", originalName, err)
	}

	if err := c.store.CreateBatch(ctx, result.Tiles); err != nil {
		c.removePhotos(result.Tiles)
		return nil, err
	}
	logger.Infof("imported %d tiles from %s", len(result.Tiles), originalName)
	return result, nil
}

// ListTiles returns every tile, newest first
func (c *Catalog) ListTiles(ctx context.Context) ([]api.Tile, error) {
	return c.store.List(ctx)
}

// GetTile returns a single tile or api.ErrTileNotFound
func (c *Catalog) GetTile(ctx context.Context, id int64) (*api.Tile, error) {
	return c.store.Get(ctx, id)
}

// DeleteTiles removes the tiles and their photos. Ids that are not integers or
// do not exist are skipped. It returns the number of deleted tiles.
func (c *Catalog) DeleteTiles(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for _, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			logger.Warnf("skipping %v: %q", api.ErrInvalidTileID, raw)
			continue
		}
		tile, err := c.store.Get(ctx, id)
		if errors.Is(err, api.ErrTileNotFound) {
			logger.Warnf("skipping %v", err)
			continue
		}
		if err != nil {
			return deleted, err
		}
		if err := c.store.Delete(ctx, tile.ID); err != nil {
			return deleted, err
		}
		c.removePhoto(*tile)
		deleted++
	}
	return deleted, nil
}

// removePhoto deletes the photo file of tile, logging failures
func (c *Catalog) removePhoto(tile api.Tile) {
	if !tile.HasPhoto() {
		return
	}
	for _, ref := range lo.Uniq(lo.Compact([]string{tile.PhotoPath, tile.WebPath})) {
		if err := c.images.Remove(ref); err != nil {
			logger.Warnf("failed to remove photo of tile %d: %v", tile.ID, err)
		}
	}
}

func (c *Catalog) removePhotos(tiles []api.Tile) {
	for _, tile := range tiles {
		c.removePhoto(tile)
	}
}

// Output is a rendered document and its suggested file name
type Output struct {
	FileName string
	*render.Document
}

// Save writes the document into dir and returns its path. Directories in
// FileName are ignored.
func (o *Output) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	target := filepath.Join(dir, filepath.Base(o.FileName))
	if err := os.WriteFile(target, o.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}

// RenderSelection renders the requested tiles, in request order, using the
// requested layout
func (c *Catalog) RenderSelection(ctx context.Context, req api.RenderRequest) (*Output, error) {
	layout, err := api.ParseLayout(string(req.Layout))
	if err != nil {
		return nil, err
	}
	ids, err := req.ParseIDs()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, api.ErrNoTilesSelected
	}

	found, err := c.store.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(found, func(t api.Tile) int64 { return t.ID })
	tiles := lo.FilterMap(ids, func(id int64, _ int) (api.Tile, bool) {
		tile, ok := byID[id]
		return tile, ok
	})
	if len(tiles) == 0 {
		return nil, api.ErrNoTilesSelected
	}

	var doc *render.Document
	switch layout {
	case api.LayoutCards:
		company, err := c.store.Company(ctx)
		if err != nil {
			return nil, err
		}
		doc, err = c.renderer.RenderCards(tiles, company, req.Client())
		if err != nil {
			return nil, err
		}
	default:
		doc, err = c.renderer.RenderTemplate(tiles, req.Client())
		if err != nil {
			return nil, err
		}
	}

	return &Output{
		FileName: api.PDFFileName(req.FileName, api.DefaultSelectionFileName),
		Document: doc,
	}, nil
}

// RenderTile renders the cover and the page of a single tile
func (c *Catalog) RenderTile(ctx context.Context, id int64, clientName, fileName string) (*Output, error) {
	tile, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := c.renderer.RenderTemplate([]api.Tile{*tile}, clientName)
	if err != nil {
		return nil, err
	}
	return &Output{
		FileName: api.PDFFileName(fileName, api.SingleTileFileName(id)),
		Document: doc,
	}, nil
}

// Inventory renders a table of every tile in the catalog
func (c *Catalog) Inventory(ctx context.Context) (*Output, error) {
	tiles, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := c.renderer.RenderInventory(tiles, c.config.CatalogTitle+" - Inventory")
	if err != nil {
		return nil, err
	}
	return &Output{FileName: InventoryFileName, Document: doc}, nil
}

// Company returns the stored branding, nil when none was configured
func (c *Catalog) Company(ctx context.Context) (*api.Company, error) {
	return c.store.Company(ctx)
}

// SetCompany replaces the branding printed by the card layout. A logo, when
// given, must be a readable image and replaces the previous one.
func (c *Catalog) SetCompany(ctx context.Context, company api.Company, logoName string, logo []byte) error {
	previous, err := c.store.Company(ctx)
	if err != nil {
		return err
	}

	if len(logo) > 0 {
		if strings.EqualFold(filepath.Ext(logoName), ".svg") {
			_, err = assets.RasterizeSVG(logo)
		} else {
			_, err = assets.DecodeBytes(logo)
		}
		if err != nil {
			return fmt.Errorf("invalid logo %s: %w", logoName, err)
		}
		stored, err := c.logos.SaveUpload(logoName, logo)
		if err != nil {
			return err
		}
		company.LogoPath = stored.Path
	} else if company.LogoPath == "" && previous != nil {
		company.LogoPath = previous.LogoPath
	}

	if err := c.store.SaveCompany(ctx, company); err != nil {
		return err
	}

	if previous != nil && previous.LogoPath != "" && previous.LogoPath != company.LogoPath {
		if err := c.logos.Remove(previous.LogoPath); err != nil {
			logger.Warnf("failed to remove previous logo: %v", err)
		}
	}
	logger.Infof("saved company branding for %q", company.Name)
	return nil
}
