package storage

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"forkful/utils"
)

const maxUploadSize = 10 << 20

// Handler exposes the image upload endpoint.
type Handler struct {
	Blobs BlobStore
}

func NewHandler(blobs BlobStore) *Handler {
	return &Handler{Blobs: blobs}
}

// UploadImage accepts one multipart "file" field and returns the public
// URL the client should store as the recipe's imageUrl.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	imageURL, err := h.Blobs.Upload(r.Context(), RandomKey(header.Filename), file, contentType)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"imageUrl": imageURL})
}
