package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"buildportal/internal/bim"
	"buildportal/internal/domain"
	"buildportal/internal/domain/services"
	"buildportal/internal/httputil"
	"buildportal/internal/storage"
)

// handleError converts domain errors to HTTP responses. Anything unmapped
// is a server-side failure: it is logged and answered with a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		forbiddenErr *domain.ForbiddenError
		conflictErr  *domain.ConflictError
		maxBytesErr  *http.MaxBytesError
	)

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
	case errors.As(err, &forbiddenErr):
		httputil.RespondErrorWithExtras(w, http.StatusForbidden, forbiddenErr.Error(), map[string]any{
			"reason": forbiddenErr.Reason,
		})
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]any{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &maxBytesErr):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, bim.ErrNotConfigured):
		httputil.RespondError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, bim.ErrGenerationFailed):
		httputil.RespondError(w, http.StatusBadGateway, "parameter tree generation failed")
	default:
		logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", httputil.GetUserID(r),
		)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// serveBlob streams an authorized blob with Range support and closes it
func serveBlob(w http.ResponseWriter, r *http.Request, blob *storage.Blob, mimeType, filename string, attachment bool) {
	defer blob.Close()

	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, no-store")

	http.ServeContent(w, r, blob.Name, blob.ModTime, blob)
}

// uploadForm parses a multipart upload bounded by maxBytes and returns the
// "file" part. The caller closes the returned file.
func uploadForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*services.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, nil, err
		}
		return nil, nil, &domain.ValidationError{Message: "invalid multipart form"}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, &domain.ValidationError{Message: "file is required"}
	}

	cleanup := func() {
		_ = file.Close()
		_ = r.MultipartForm.RemoveAll()
	}
	return &services.Upload{Filename: header.Filename, Body: file}, cleanup, nil
}

// optionalFormValue returns nil when the field is absent
func optionalFormValue(r *http.Request, key string) *string {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil
	}
	v := r.FormValue(key)
	return &v
}

func parseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

func parseVisibility(w http.ResponseWriter, r *http.Request) (bool, error) {
	visible, err := httputil.ParseBoolField(w, r, "is_visible_to_customer")
	if err != nil {
		return false, &domain.ValidationError{Message: err.Error()}
	}
	return visible, nil
}

// downloadName is the title with the stored file's extension
func downloadName(title string, blob *storage.Blob) string {
	ext := path.Ext(blob.Name)
	if ext == "" || strings.HasSuffix(strings.ToLower(title), strings.ToLower(ext)) {
		return title
	}
	return title + ext
}
