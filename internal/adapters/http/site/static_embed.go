package site

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// pageFS is rooted at static/.
func pageFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Only possible if the embed directive and the directory disagree.
		return staticFS
	}
	return sub
}

// assetsFS is rooted at static/assets/.
func assetsFS() fs.FS {
	sub, err := fs.Sub(pageFS(), "assets")
	if err != nil {
		return pageFS()
	}
	return sub
}
