package handlers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tastebook/tastebook/internal/auth"
	"github.com/tastebook/tastebook/internal/models"
	"github.com/tastebook/tastebook/internal/storage"
)

const maxUploadBytes = 10 << 20

func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	images, err := h.images.ListByUser(r.Context(), userID)
	if err != nil {
		h.internalError(w, err, "Image listing failed")
		return
	}
	respondJSON(w, http.StatusOK, images)
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	filename := storage.NewFilename(header.Filename)
	contentType := header.Header.Get("Content-Type")

	if err := h.uploads.Save(r.Context(), filename, file, contentType); err != nil {
		h.internalError(w, err, "Image upload failed")
		return
	}

	image := &models.Image{Filename: filename, ContentType: contentType, UserID: userID}
	if err := h.images.Create(r.Context(), image); err != nil {
		h.internalError(w, err, "Image record creation failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Image uploaded successfully",
		"filename": filename,
	})
}

func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)
	filename := mux.Vars(r)["filename"]

	image, err := h.images.FindOwned(r.Context(), filename, userID)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "Image not found")
			return
		}
		h.internalError(w, err, "Image lookup failed")
		return
	}

	file, err := h.uploads.Open(r.Context(), filename)
	if err != nil {
		h.internalError(w, err, "Image read failed")
		return
	}
	defer file.Close()

	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, file); err != nil {
		h.log.WithError(err).WithField("filename", filename).Error("Image write failed")
	}
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)
	filename := mux.Vars(r)["filename"]

	image, err := h.images.FindOwned(r.Context(), filename, userID)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "Image not found")
			return
		}
		h.internalError(w, err, "Image lookup failed")
		return
	}

	if err := h.uploads.Delete(r.Context(), filename); err != nil {
		h.internalError(w, err, "Image removal failed")
		return
	}
	if err := h.images.Delete(r.Context(), image); err != nil {
		h.internalError(w, err, "Image record removal failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
