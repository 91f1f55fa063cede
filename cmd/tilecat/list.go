package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/samber/lo"
	"golang.org/x/term"

	"github.com/flanksource/tilecat/api"
)

type listStyles struct {
	header lipgloss.Style
	id     lipgloss.Style
	name   lipgloss.Style
	cell   lipgloss.Style
	photo  lipgloss.Style
	none   lipgloss.Style
}

func newListStyles(out *os.File) listStyles {
	renderer := lipgloss.NewRenderer(out)
	if !term.IsTerminal(int(out.Fd())) {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return listStyles{
		header: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		id:     renderer.NewStyle().Width(6).Align(lipgloss.Right).Foreground(lipgloss.Color("8")),
		name:   renderer.NewStyle().Width(32).Bold(true),
		cell:   renderer.NewStyle().Width(16),
		photo:  renderer.NewStyle().Foreground(lipgloss.Color("10")),
		none:   renderer.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// formatTiles renders the catalog as aligned columns, styled when out is a terminal
func formatTiles(out *os.File, tiles []api.Tile) string {
	if len(tiles) == 0 {
		return "No tiles in the catalog\n"
	}
	s := newListStyles(out)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		s.id.Inherit(s.header).Render("ID"), " ",
		s.name.Inherit(s.header).Render("NAME"),
		s.cell.Inherit(s.header).Render("SIZE"),
		s.cell.Inherit(s.header).Render("FINISH"),
		s.header.Render("PHOTO"),
	))
	b.WriteString("\n")

	for _, tile := range tiles {
		photo := s.none.Render("-")
		if tile.HasPhoto() {
			photo = s.photo.Render("yes")
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			s.id.Render(strconv.FormatInt(tile.ID, 10)), " ",
			s.name.Render(lo.Substring(tile.Name, 0, 30)),
			s.cell.Render(lo.Substring(tile.Size, 0, 14)),
			s.cell.Render(lo.Substring(tile.Finish, 0, 14)),
			photo,
		))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n%d tiles\n", len(tiles)))
	return b.String()
}
