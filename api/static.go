package api

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"collegeportal/util"

	"github.com/gorilla/mux"
)

// categoryImageIDRules rejects anything that could name a file outside the image directory
const categoryImageIDRules = `required,printascii,max=128,excludesall=/\`

// categoryImageExt is appended to the id to form the file name
const categoryImageExt = ".png"

// getCategoryImage streams <images dir>/<id>.png.
// A rejected id answers exactly like a missing file.
func (a *API) getCategoryImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := a.validate.Var(id, categoryImageIDRules); err != nil {
		http.NotFound(w, r)
		return
	}

	name, err := util.ValidateFilePath(id+categoryImageExt, a.config.Static.CategoryImagesDir)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if !a.serveFile(w, r, name) {
		http.NotFound(w, r)
	}
}

// frontendHandler serves the built client bundle and falls back to index.html
// for any other GET or HEAD so client-side routing works.
func (a *API) frontendHandler() http.Handler {
	root := a.config.Static.ClientBuildDir
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}

		rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if rel != "" {
			if name, err := util.ValidateFilePath(filepath.FromSlash(rel), root); err == nil {
				if a.serveFile(w, r, name) {
					return
				}
			}
		}

		index, err := util.ValidateFilePath("index.html", root)
		if err != nil || !a.serveFile(w, r, index) {
			http.NotFound(w, r)
		}
	})
}

// serveFile streams a regular file with http.ServeContent.
// It reports false without writing anything when the file is missing or a directory.
func (a *API) serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	f, err := os.Open(name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			a.logger.Warnw("Failed to open static file", "file", name, "error", err)
		}
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}
