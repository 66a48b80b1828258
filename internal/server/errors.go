package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/observability"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidConfiguration,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPolicy,
		errors.ErrCodeInvalidManifest:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeGalleryNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	msg := errors.Messages(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "route", routePattern(r), "error", err)
		msg = "internal error"
	}
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body of at most limit bytes into v. An empty body
// leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return errors.New(errors.ErrCodeUnsupported, "Content-Type must be application/json")
		}
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}

