package api

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Layout selects the composition strategy of a rendered catalog
type Layout string

const (
	// LayoutTemplate renders a poster cover followed by one page per tile
	LayoutTemplate Layout = "template"
	// LayoutCards renders a two column grid of tile cards
	LayoutCards Layout = "cards"
)

// ParseLayout accepts "template" (also the empty string) and "cards"
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutTemplate:
		return LayoutTemplate, nil
	case LayoutCards:
		return LayoutCards, nil
	}
	return "", fmt.Errorf("unknown layout %q, expected %q or %q", s, LayoutTemplate, LayoutCards)
}

// RenderRequest is the transient input of a catalog render
type RenderRequest struct {
	IDs        []string `json:"tile_ids"`
	ClientName string   `json:"client_name,omitempty"`
	FileName   string   `json:"pdf_name,omitempty"`
	Layout     Layout   `json:"layout,omitempty"`
}

// ParseIDs converts the submitted ids into integers, keeping the first
// occurrence of each. Any non integer id rejects the whole request.
func (r RenderRequest) ParseIDs() ([]int64, error) {
	ids := make([]int64, 0, len(r.IDs))
	for _, raw := range r.IDs {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTileID, raw)
		}
		ids = append(ids, id)
	}
	return lo.Uniq(ids), nil
}

// Client returns the trimmed client name
func (r RenderRequest) Client() string {
	return strings.TrimSpace(r.ClientName)
}

// PDFFileName sanitizes a caller supplied document name: directories are
// dropped, spaces become underscores and a .pdf suffix is ensured. A name
// that is empty after sanitizing yields fallback.
func PDFFileName(requested, fallback string) string {
	name := strings.TrimSpace(strings.ReplaceAll(requested, "\\", "/"))
	name = strings.TrimSpace(path.Base(name))
	if name == "" || name == "." || name == ".." || name == "/" {
		return fallback
	}
	name = strings.ReplaceAll(name, " ", "_")
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// DefaultSelectionFileName is used when a multi tile render has no name override
const DefaultSelectionFileName = "tiles_selected.pdf"

// SingleTileFileName is the default document name for a single tile render
func SingleTileFileName(id int64) string {
	return fmt.Sprintf("tile_%d.pdf", id)
}
