package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/qrstudio/qrstudio-bot/internal/domain/dto"
	"github.com/qrstudio/qrstudio-bot/internal/domain/logo"
	"github.com/qrstudio/qrstudio-bot/internal/domain/payload"
	"github.com/qrstudio/qrstudio-bot/pkg/smtp"
)

const maxBodyBytes = 64 << 10

type contentTypeResponse struct {
	Type   payload.ContentType `json:"type"`
	Fields []string            `json:"fields"`
}

type payloadRequest struct {
	Type   payload.ContentType `json:"type"`
	Fields requestFields       `json:"fields"`
}

// requestFields accepts strings, numbers and booleans as field values, so
// {"hidden": true} and {"number": 123} work as well as their quoted forms.
type requestFields payload.Fields

func (f *requestFields) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return err
	}

	fields := make(requestFields, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case nil:
		case string:
			fields[name] = v
		case bool:
			fields[name] = strconv.FormatBool(v)
		case json.Number:
			fields[name] = v.String()
		default:
			return fmt.Errorf("field %q must be a string, number or boolean", name)
		}
	}
	*f = fields
	return nil
}

type payloadResponse struct {
	Payload string `json:"payload"`
}

type qrCodeRequest struct {
	payloadRequest
	Size       int    `json:"size"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
	Level      string `json:"level"`
	Style      string `json:"style"`
	Logo       string `json:"logo"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) contentTypes(w http.ResponseWriter, _ *http.Request) {
	types := payload.ContentTypes()
	resp := make([]contentTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, contentTypeResponse{Type: t, Fields: t.FieldNames()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) logos(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, logo.All())
}

func (h *Handler) payload(w http.ResponseWriter, r *http.Request) {
	var req payloadRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	data, err := payload.EncodeFields(req.Type, payload.Fields(req.Fields))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, payloadResponse{Payload: data})
}

// qrCode renders a PNG. With ?format=text the symbol is returned as
// half-block text instead.
func (h *Handler) qrCode(w http.ResponseWriter, r *http.Request) {
	var body qrCodeRequest
	if err := decodeBody(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	req := dto.QRRequest{
		Type:       body.Type,
		Fields:     payload.Fields(body.Fields),
		Size:       body.Size,
		Foreground: body.Foreground,
		Background: body.Background,
		Level:      body.Level,
		Style:      body.Style,
		Logo:       body.Logo,
	}

	if r.URL.Query().Get("format") == "text" {
		text, err := h.qrService.Terminal(req)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(text))
		return
	}

	res, err := h.qrService.Render(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", smtp.AttachmentName))
	w.Header().Set("X-Cache", cacheStatus(res.Cached))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.PNG)
}

func cacheStatus(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}
