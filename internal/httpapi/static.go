package httpapi

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

// dashboardHandler serves the embedded admin dashboard under /admin.
func dashboardHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/admin", http.FileServer(http.FS(sub)))
}
