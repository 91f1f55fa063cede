package api

import (
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
)

var (
	// ErrTileNotFound is returned when a tile id does not exist in the store
	ErrTileNotFound = errors.New("tile not found")
	// ErrNoTilesSelected is returned when a render request resolves to zero tiles
	ErrNoTilesSelected = errors.New("no tiles selected")
	// ErrInvalidTileID is returned when a submitted tile id is not an integer
	ErrInvalidTileID = errors.New("invalid tile id")
	// ErrNameRequired is returned when a tile is submitted without a name
	ErrNameRequired = errors.New("tile name is required")
)

// Tile is a single catalog entry.
//
// Name and Finish are always stored upper-cased. SKU and Price are legacy
// columns kept for storage compatibility; only the card layout prints them.
type Tile struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	SKU         string    `json:"sku,omitempty" yaml:"sku,omitempty"`
	Size        string    `json:"size,omitempty" yaml:"size,omitempty"`
	Price       string    `json:"price,omitempty" yaml:"price,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Finish      string    `json:"finish,omitempty" yaml:"finish,omitempty"`
	PhotoPath   string    `json:"photo_path,omitempty" yaml:"photo_path,omitempty"`
	WebPath     string    `json:"web_path,omitempty" yaml:"web_path,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// NewTile builds a tile from submitted form values, normalizing name and finish.
func NewTile(name, finish, size, description string) Tile {
	t := Tile{
		Name:        name,
		Finish:      finish,
		Size:        size,
		Description: description,
	}
	t.Normalize()
	return t
}

// Normalize upper-cases the name and finish in place.
func (t *Tile) Normalize() {
	t.Name = strings.ToUpper(t.Name)
	t.Finish = strings.ToUpper(t.Finish)
}

// PhotoRef returns the reference used to locate the tile photo at render time.
// The web path wins because it resolves the same way on every host.
func (t Tile) PhotoRef() string {
	if t.WebPath != "" {
		return t.WebPath
	}
	return t.PhotoPath
}

// PhotoRefs returns every bound photo reference in lookup order, web path
// first. The filesystem path still locates the photo when the web prefix does
// not map onto the images directory.
func (t Tile) PhotoRefs() []string {
	return lo.Uniq(lo.Compact([]string{t.WebPath, t.PhotoPath}))
}

// HasPhoto reports whether any photo reference is bound to the tile
func (t Tile) HasPhoto() bool {
	return t.PhotoRef() != ""
}

// Company holds the optional branding printed by the card layout
type Company struct {
	Name     string `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	LogoPath string `json:"logo_path,omitempty" yaml:"logo_path,omitempty"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
}

// FooterLine is the centered footer text of every card layout page
func (c *Company) FooterLine() string {
	if c == nil {
		return ""
	}
	return c.Name + "  |  " + c.Phone + "  |  " + c.Email
}

// IsEmpty reports whether no branding has been configured
func (c *Company) IsEmpty() bool {
	return c == nil || (c.Name == "" && c.LogoPath == "" && c.Phone == "" && c.Email == "")
}
