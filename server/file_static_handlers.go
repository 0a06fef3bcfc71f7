package server

import (
	"embed"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/go-teetime/theme"
)

//go:embed static/*
var staticFiles embed.FS

// themeCSSFile is generated from the palette rather than embedded
const themeCSSFile = "css/theme.css"

func StaticFilesFS() fs.FS {
	// Create the sub filesystem once
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}

	return subFS
}

func StreamFile(w http.ResponseWriter, _ *http.Request, fileName string) error {
	var data []byte
	if fileName == themeCSSFile {
		data = []byte(theme.RootCSS())
	} else {
		var err error
		data, err = fs.ReadFile(StaticFilesFS(), fileName)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", fileName, err)
		}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	ctype := mime.TypeByExtension(ext)
	if ctype == "" {
		// Fallback for unknown extensions
		ctype = http.DetectContentType(data)
	}
	// Ensure UTF-8 for text types when not present
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	w.Header().Set("Content-Type", ctype)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s content: %w", fileName, err)
	}
	return nil
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" || strings.Contains(filePath, "..") {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			logError(r, http.StatusNotFound, err)
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
