package employees

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/insightguardian/insightguardian/internal/http/features/common"
	"github.com/insightguardian/insightguardian/internal/httputil"
	"github.com/insightguardian/insightguardian/pkg/objectstore"
)

const formMemory = 8 << 20

// UploadResponse is returned after an image upload.
type UploadResponse struct {
	Message   string `json:"message"`
	PublicURL string `json:"publicUrl"`
}

// AddImage stores one reference image under the caller's organization and
// returns its public URL.
// POST /api/employees/addImage (multipart/form-data, field "file")
func (h *Handler) AddImage(w http.ResponseWriter, r *http.Request) {
	orgID, ok := common.OrganizationID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(formMemory); err != nil {
		if httputil.IsMaxBytesError(err) {
			httputil.Error(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		httputil.Error(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		httputil.Error(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		common.WriteError(w, r, h.logger, err, "Something went wrong while uploading image")
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		httputil.Error(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	if len(data) == 0 {
		httputil.Error(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	mtype := mimetype.Detect(data)
	if !isAllowedImage(mtype) {
		httputil.Error(w, http.StatusBadRequest, "file must be an image")
		return
	}

	key := objectstore.ImageKey(orgID, header.Filename, mtype.Extension(), h.now())
	url, err := h.uploader.Put(r.Context(), key, data, mtype.String())
	if err != nil {
		if errors.Is(err, objectstore.ErrInvalidKey) {
			httputil.Error(w, http.StatusBadRequest, "invalid file name")
			return
		}
		common.WriteError(w, r, h.logger, err, "Something went wrong while uploading image")
		return
	}

	h.logger.Info("image uploaded", "organization_id", orgID, "key", key, "content_type", mtype.String(), "size", len(data))

	httputil.JSON(w, http.StatusOK, UploadResponse{
		Message:   "Image uploaded successfully",
		PublicURL: url,
	})
}

// isAllowedImage accepts raster images. SVG is refused since it can carry
// script and the files are served publicly.
func isAllowedImage(m *mimetype.MIME) bool {
	if m.Is("image/svg+xml") {
		return false
	}
	return strings.HasPrefix(m.String(), "image/")
}
