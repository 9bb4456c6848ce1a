package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"

	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

type MediaHandler struct {
	service  ports.MediaService
	maxBytes int64
}

func NewMediaHandler(service ports.MediaService, maxBytes int64) *MediaHandler {
	return &MediaHandler{service: service, maxBytes: maxBytes}
}

type removeMediaRequest struct {
	Paths []string `json:"paths"`
}

// Upload handles a multipart form with a "file" part and an optional "folder".
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+maxBodyBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, r, errors.NewNotValid(err, "invalid upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, errors.NewNotValid(err, "file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, errors.NewNotValid(err, "reading upload"))
		return
	}

	object, err := h.service.Upload(r.Context(), r.FormValue("folder"), header.Filename, header.Header.Get("Content-Type"), data)
	reply(w, r, http.StatusCreated, object, err)
}

func (h *MediaHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req removeMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	replyDeleted(w, r, h.service.Remove(r.Context(), req.Paths))
}

// localMedia serves files written by the local media store. Directory
// listings are not exposed.
func localMedia(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+r.URL.Path))))
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		files.ServeHTTP(w, r)
	})
}
