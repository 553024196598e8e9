package handler

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/akave-ai/alephweb/internal/cache"
)

//go:embed templates/*.html
var templateFS embed.FS

// LayoutTemplate is the name of the application shell template.
const LayoutTemplate = "layout.html"

// partialDirs are the static sub-directories shipped to the client as templates.
var partialDirs = []string{"templates", "help"}

// Renderer renders the embedded HTML templates for echo.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// UIHandler serves the single-page application shell and its static assets.
type UIHandler struct {
	StaticDir string
	Title     string
}

type shellData struct {
	Title    string
	Partials map[string]string
}

// Shell renders the application shell with every client template inlined
// (GET /, /search, /help/*, /entities/*, /tabular/*, /text/*).
func (h *UIHandler) Shell(c echo.Context) error {
	partials, err := h.Partials()
	if err != nil {
		return fmt.Errorf("collect client templates: %w", err)
	}
	cache.Enable(c, true)
	return c.Render(http.StatusOK, LayoutTemplate, shellData{Title: h.Title, Partials: partials})
}

// Partials reads the client templates below the static directory, keyed by
// their slash-separated path relative to it. Missing directories are skipped.
func (h *UIHandler) Partials() (map[string]string, error) {
	out := make(map[string]string)
	root := os.DirFS(h.StaticDir)
	for _, dir := range partialDirs {
		err := fs.WalkDir(root, dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			raw, err := fs.ReadFile(root, p)
			if err != nil {
				return err
			}
			out[p] = string(raw)
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return out, nil
}

// Static serves files below the static directory (GET /static/*).
func (h *UIHandler) Static(c echo.Context) error {
	name := path.Clean("/" + c.Param("*"))
	if name == "/" {
		return echo.ErrNotFound
	}
	return c.File(filepath.Join(h.StaticDir, filepath.FromSlash(name)))
}
