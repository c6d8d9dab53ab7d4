package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/service"
)

// maxBlobBytes caps an upload body. Shorts are short.
const maxBlobBytes = 64 << 20

// BlobHandler exposes raw media transfer. Access control is the `token`
// query parameter, a signed capability bound to the blob id (or, for the
// bulk delete, the owner's user id), so these routes need no password.
type BlobHandler struct {
	blobs  *service.BlobService
	logger *slog.Logger
}

func NewBlobHandler(blobs *service.BlobService, logger *slog.Logger) *BlobHandler {
	return &BlobHandler{blobs: blobs, logger: logger}
}

// HandleUpload stores the media for a blob id.
//
// HTTP: POST /rest/blobs/{blobId}?token=...
// Body: raw bytes (application/octet-stream)
func (h *BlobHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBlobBytes+1))
	if err != nil {
		writeError(w, apperror.BadRequest("body", "could not read upload body"))
		return
	}
	if len(data) > maxBlobBytes {
		writeError(w, apperror.BadRequest("body", "upload exceeds the size limit"))
		return
	}

	if err := h.blobs.Upload(r.Context(), r.PathValue("blobId"), data, r.URL.Query().Get("token")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDownload streams the media for a blob id.
//
// HTTP: GET /rest/blobs/{blobId}?token=...
func (h *BlobHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	data, err := h.blobs.Download(r.Context(), r.PathValue("blobId"), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("blob download write failed", slog.String("error", err.Error()))
	}
}

// HandleDelete removes a blob.
//
// HTTP: DELETE /rest/blobs/{blobId}?token=...
func (h *BlobHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.blobs.Delete(r.Context(), r.PathValue("blobId"), r.URL.Query().Get("token")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteAll removes every blob belonging to a user's shorts.
//
// HTTP: DELETE /rest/blobs/{userId}/blobs?token=...
func (h *BlobHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.blobs.DeleteAllForOwner(r.Context(), r.PathValue("userId"), r.URL.Query().Get("token")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
