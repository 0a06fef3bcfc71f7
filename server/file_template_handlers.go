package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-teetime/theme"
)

//go:embed templates/*
var templateFiles embed.FS

// Shared templates parsed into every page
var sharedTemplates = []string{"layout.html", "calendar.html", "course_card.html"}

// Pages rendered inside the layout
const (
	pageIndex   = "index.html"
	pageResults = "results.html"
	pageCourse  = "course.html"
	pageAuth    = "auth.html"
	pageBooking = "booking.html"
	pageError   = "error.html"
)

var pages = []string{pageIndex, pageResults, pageCourse, pageAuth, pageBooking, pageError}

func TemplateFilesFS() fs.FS {
	// Create the sub filesystem once
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"color": func(name string) template.CSS {
		return template.CSS(theme.Color(name).CSSVar())
	},
	"stars": func(rating float64) []bool {
		full := int(rating + 0.5)
		stars := make([]bool, 5)
		for i := range stars {
			stars[i] = i < full
		}
		return stars
	},
}

// ParseTemplate parses a page together with the shared layout and partials
func ParseTemplate(name string) (*template.Template, error) {
	files := append(append([]string(nil), sharedTemplates...), name)
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), files...)
}

func (s *Server) initTemplates() error {
	s.templates = make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := ParseTemplate(page)
		if err != nil {
			return err
		}
		s.templates[page] = tmpl
	}
	return nil
}

// render executes a page's layout, or a named block for partial requests
func (s *Server) render(w http.ResponseWriter, status int, page, block string, data any) {
	tmpl, ok := s.templates[page]
	if !ok {
		log.Error().Str("page", page).Msg("unknown template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Render into a buffer so a template error never leaves a half written page
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, block, data); err != nil {
		log.Err(err).Str("page", page).Str("block", block).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, page string, data any) {
	s.render(w, status, page, "layout", data)
}
