package item

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mediavault/service/internal/middleware"
	"github.com/mediavault/service/internal/response"
	"github.com/mediavault/service/internal/schema"
)

// maxUploadMemory bounds how much of a multipart upload is held in memory
// before spilling to disk.
const maxUploadMemory = 32 << 20

// Handler holds HTTP handlers for item endpoints. It is a thin shell: decode
// the request, call the service, map the error taxonomy onto status codes.
type Handler struct {
	svc *Service
}

// NewHandler creates a new item Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload accepts a multipart upload ("file" part, optional "name" field
// defaulting to the part's filename) and stores all its renditions.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "missing file part")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	if !validName(name) {
		response.BadRequest(w, "invalid item name")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "could not read upload")
		return
	}

	if err := h.svc.AddItem(r.Context(), owner, name, data); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			response.QuotaExceeded(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}
	response.Created(w, map[string]string{"name": name})
}

// List returns the user's logical items assembled from the store listing.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	items, err := h.svc.ListItems(r.Context(), owner)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, items)
}

// GetVariant streams one stored rendition back to the caller. The optional
// "encoding" query parameter selects IDENTITY (default) or BASE64.
func (h *Handler) GetVariant(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	category, variant, name, ok := pathCoordinates(w, r)
	if !ok {
		return
	}

	data, err := h.svc.GetItem(r.Context(), owner, category, variant, name, r.URL.Query().Get("encoding"))
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedEncoding):
			response.BadRequest(w, "unsupported encoding")
		case h.svc.IsNotFound(err):
			response.NotFound(w, "item not found")
		default:
			response.InternalError(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(data)
}

// DeleteVariant removes one stored rendition of an item.
func (h *Handler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	category, variant, name, ok := pathCoordinates(w, r)
	if !ok {
		return
	}

	deleted, err := h.svc.DeleteVariant(r.Context(), owner, category, variant, name)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]bool{"deleted": deleted})
}

// pathCoordinates validates the {category}/{variant}/{name} URL segments,
// writing a 400 itself when they don't parse.
func pathCoordinates(w http.ResponseWriter, r *http.Request) (schema.Category, schema.Variant, string, bool) {
	category, err := schema.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return "", "", "", false
	}
	variant, err := schema.ParseVariant(chi.URLParam(r, "variant"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return "", "", "", false
	}
	name := chi.URLParam(r, "name")
	if !validName(name) {
		response.BadRequest(w, "invalid item name")
		return "", "", "", false
	}
	return category, variant, name, true
}

// validName rejects names that would escape or restructure the key scheme.
// The codec itself stores names verbatim, so sanitization happens here at
// the request boundary.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}

// ownerFrom recovers the authenticated user's identity from the request
// context set by the auth middleware.
func ownerFrom(r *http.Request) (Owner, bool) {
	id, _ := r.Context().Value(middleware.UserIDKey).(string)
	name, _ := r.Context().Value(middleware.UserNameKey).(string)
	if id == "" || name == "" {
		return Owner{}, false
	}
	return Owner{Name: name, ID: id}, true
}
