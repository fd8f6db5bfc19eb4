package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	"github.com/qrstudio/qrstudio-bot/internal/domain/payload"
	qr "github.com/qrstudio/qrstudio-bot/pkg/qrcode"
)

var errInvalidBody = errors.New("invalid request body")

var errorStatusMap = map[error]int{
	errInvalidBody:                http.StatusBadRequest,
	payload.ErrMissingInput:       http.StatusBadRequest,
	payload.ErrUnknownContentType: http.StatusBadRequest,
	payload.ErrUnknownPlatform:    http.StatusBadRequest,
	logo.ErrUnknownLogo:           http.StatusBadRequest,

	qr.ErrInvalidOptions: http.StatusUnprocessableEntity,
	qr.ErrEncode:         http.StatusUnprocessableEntity,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		h.logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
