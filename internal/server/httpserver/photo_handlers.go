package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"photovault/internal/errs"
)

// maxUploadBytes caps multipart uploads; encrypted photos carry AEAD overhead
// on top of the raw image size.
const maxUploadBytes = 64 << 20

type photoItem struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	owner, ok := UsernameFromCtx(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "malformed multipart body"})
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "missing file field"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, s.log, fmt.Errorf("read upload: %w", err))
		return
	}
	contentType := hdr.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	id, err := s.photos.Upload(r.Context(), owner, hdr.Filename, contentType, content)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "message": "Uploaded"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := UsernameFromCtx(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}
	recs, err := s.photos.List(r.Context(), owner)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	items := make([]photoItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, photoItem{
			ID:          rec.ID.String(),
			Owner:       rec.Owner,
			Filename:    rec.Filename,
			ContentType: rec.ContentType,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	owner, ok := UsernameFromCtx(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}
	filename := chi.URLParam(r, "filename")
	content, err := s.photos.Download(r.Context(), owner, filename)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Message: "not found"})
			return
		}
		writeError(w, s.log, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	_, _ = w.Write(content)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := UsernameFromCtx(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "bad id"})
		return
	}
	if err := s.photos.Delete(r.Context(), owner, id); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Deleted"})
}
