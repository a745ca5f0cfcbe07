// Package site serves the sample datasets and the landing redirect.
package site

import (
	"context"
	"net/http"
	"path"

	"github.com/okian/marquee/internal/adapters/dataset"
)

// Register attaches the static routes to mux:
//
//	GET /            -> redirect to /dashboard
//	GET /data/{file} -> embedded sample datasets
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET /{$}", http.RedirectHandler("/dashboard", http.StatusFound))
	mux.Handle("GET /data/", http.StripPrefix("/data/", DataHandler()))
}

// DataHandler serves the sample datasets so a second instance can use this
// one as its HTTP data source.
func DataHandler() http.Handler {
	files := http.FileServerFS(dataset.Sample())
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path.Ext(r.URL.Path) == ".csv" {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		}
		files.ServeHTTP(w, r)
	})
}
