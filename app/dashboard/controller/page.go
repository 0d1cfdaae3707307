package controller

import (
	"io/fs"
	"net/http"

	"github.com/pkgpulse/pkgpulse/web"
)

// PageHandler serves the embedded single-page dashboard.
func (c *Controller) PageHandler() http.Handler {
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		// The embed is part of the binary; a missing subtree is a build defect.
		panic(err)
	}
	return http.FileServer(http.FS(static))
}
