package web

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"roomproof/internal/domain"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// snapshotJSON is the wire shape of a snapshot.
type snapshotJSON struct {
	ID        int64                 `json:"id"`
	RoomName  string                `json:"roomName"`
	Status    domain.SnapshotStatus `json:"status"`
	ImageRef  string                `json:"imageRef"`
	Analysis  domain.List           `json:"analysis"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

func toSnapshotJSON(snap *domain.Snapshot) snapshotJSON {
	return snapshotJSON{
		ID:        snap.ID,
		RoomName:  snap.RoomName,
		Status:    snap.Status,
		ImageRef:  snap.ImageKey,
		Analysis:  snap.Analysis,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
}

// readUpload parses a multipart upload's "image" part and validates it by
// magic bytes.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (data []byte, mimeType string, ok bool) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to parse form")
		return nil, "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "image file required")
		return nil, "", false
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Error("failed to close upload file", "error", err)
		}
	}()

	data, err = io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read file")
		s.logger.Error("read upload failed", "error", err)
		return nil, "", false
	}

	mimeType, allowed := allowedImageMIME(data)
	if !allowed {
		s.writeError(w, http.StatusBadRequest, "unsupported image format")
		return nil, "", false
	}
	return data, mimeType, true
}

func (s *Server) handleCaptureSnapshot(w http.ResponseWriter, r *http.Request) {
	imageData, mimeType, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	roomName := r.FormValue("room")
	snap, err := s.inventory.CaptureSnapshot(r.Context(), roomName, imageData, mimeType)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to capture snapshot")
		s.logger.Error("capture snapshot failed", "room", roomName, "error", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toSnapshotJSON(snap))
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid snapshot id")
		return
	}

	snap, err := s.inventory.GetSnapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to get snapshot")
		s.logger.Error("get snapshot failed", "snapshot_id", id, "error", err)
		return
	}
	if snap == nil {
		s.writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}

	s.writeJSON(w, http.StatusOK, toSnapshotJSON(snap))
}

type updateSnapshotRequest struct {
	RoomName string                 `json:"roomName"`
	Location string                 `json:"location"`
	Items    []domain.InventoryItem `json:"items"`
}

func (s *Server) handleUpdateSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid snapshot id")
		return
	}

	var req updateSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := s.inventory.UpdateSnapshot(r.Context(), id, req.RoomName, req.Location, req.Items)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to update snapshot")
		s.logger.Error("update snapshot failed", "snapshot_id", id, "error", err)
		return
	}

	s.writeJSON(w, http.StatusOK, toSnapshotJSON(snap))
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid snapshot id")
		return
	}

	if err := s.inventory.DeleteSnapshot(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to delete snapshot")
		s.logger.Error("delete snapshot failed", "snapshot_id", id, "error", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSnapshotImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid snapshot id")
		return
	}

	snap, err := s.inventory.GetSnapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to get snapshot")
		s.logger.Error("get snapshot failed", "snapshot_id", id, "error", err)
		return
	}
	if snap == nil {
		s.writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}

	img, mimeType, err := s.images.Get(r.Context(), snap.ImageKey)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer func() {
		if err := img.Close(); err != nil {
			s.logger.Error("failed to close image", "error", err)
		}
	}()

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, img); err != nil {
		s.logger.Error("failed to write image", "snapshot_id", id, "error", err)
	}
}
