package api

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var staticFiles embed.FS

// dashboardFS holds the dashboard page and its script, rooted at static/.
var dashboardFS = mustSub(staticFiles, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
