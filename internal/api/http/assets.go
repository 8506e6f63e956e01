package http

import (
	"io"
	"os"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prono-coach/pronocoach-learn/internal/storage"
)

// MountAssets serves course handout PDFs referenced by each step's
// book.pdf_url.
func MountAssets(r chi.Router, store *storage.HandoutStore) {
	r.Get("/books/{file}", func(w nethttp.ResponseWriter, req *nethttp.Request) {
		f, err := store.Open(chi.URLParam(req, "file"))
		if err != nil {
			status := nethttp.StatusNotFound
			if !os.IsNotExist(err) {
				status = nethttp.StatusBadRequest
			}
			writeErr(w, status, "handout not found")
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.Copy(w, f)
	})
}
