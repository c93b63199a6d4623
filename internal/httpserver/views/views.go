// Package views renders the bookmark manager pages.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	MenuInsert = "insert"
	MenuView   = "view"
)

// Flash kinds, mapped to CSS classes in the layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	MsgAdded         = "✅ Bookmark added successfully!"
	MsgMissingFields = "❌ Please fill out all fields."
	MsgBadCategory   = "❌ Please select a valid category."
	MsgInsertFailed  = "❌ Could not save the bookmark. Please try again later."
	MsgQueryFailed   = "Error fetching bookmarks. Ensure the required index exists."
	MsgNoBookmarks   = "No bookmarks found."
	MsgRateLimited   = "⏳ Too many bookmarks in a row. Please retry in %d seconds."
)

type Flash struct {
	Kind string
	Text string
}

// Form echoes the insert form values back after a rejected submission.
type Form struct {
	Link        string
	Description string
	Keywords    string
	Category    string
}

// Page is the data of the single page template. Flashes render above the
// result cards, in order.
type Page struct {
	Menu       string
	Categories []domain.Category
	Form       Form
	Selected   domain.Category
	Flashes    []Flash
	Results    []*domain.Bookmark
}

// NormalizeMenu maps any unknown value to the insert menu.
func NormalizeMenu(raw string) string {
	if raw == MenuView {
		return MenuView
	}
	return MenuInsert
}

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("page.html").
		Funcs(template.FuncMap{
			"join": func(parts []string) string { return strings.Join(parts, ", ") },
		}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes p to w. Missing categories default to the full set.
func (r *Renderer) Render(w io.Writer, p Page) error {
	if p.Categories == nil {
		p.Categories = domain.Categories()
	}
	p.Menu = NormalizeMenu(p.Menu)

	if err := r.tmpl.ExecuteTemplate(w, "page.html", p); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
