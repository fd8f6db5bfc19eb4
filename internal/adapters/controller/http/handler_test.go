package http

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qrstudio/qrstudio-bot/internal/domain/service"
	"github.com/qrstudio/qrstudio-bot/pkg/logger"
	qr "github.com/qrstudio/qrstudio-bot/pkg/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	qrService := service.NewQrService(nil, nil, nil, nil, logger.Nop(), service.QrServiceOptions{
		Defaults: qr.Default,
		MinSize:  100,
		MaxSize:  2000,
	})
	srv := httptest.NewServer(NewHandler(qrService, logger.Nop()).Init())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestContentTypes(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/content-types")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body []contentTypeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 9)
	assert.Equal(t, "text", string(body[0].Type))
	assert.Equal(t, []string{"text"}, body[0].Fields)
}

func TestLogos(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/logos")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body, 12)
	assert.Contains(t, body, "youtube")
}

func TestPayload(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{
			name:   "url gets scheme",
			body:   `{"type":"url","fields":{"url":"example.com"}}`,
			status: http.StatusOK,
			want:   "https://example.com",
		},
		{
			name:   "social handle",
			body:   `{"type":"social","fields":{"platform":"youtube","username":"@handle"}}`,
			status: http.StatusOK,
			want:   "https://youtube.com/@handle",
		},
		{
			name:   "wifi hidden as boolean",
			body:   `{"type":"wifi","fields":{"ssid":"Net","password":"pw","security":"WPA","hidden":true}}`,
			status: http.StatusOK,
			want:   "WIFI:T:WPA;S:Net;P:pw;H:true;;",
		},
		{
			name:   "phone number as json number",
			body:   `{"type":"phone","fields":{"number":123}}`,
			status: http.StatusOK,
			want:   "tel:123",
		},
		{
			name:   "field value is an object",
			body:   `{"type":"text","fields":{"text":{"a":1}}}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "blank text",
			body:   `{"type":"text","fields":{"text":"   "}}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown type",
			body:   `{"type":"fax","fields":{}}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed body",
			body:   `{"type":`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/api/v1/payload", tt.body)
			require.Equal(t, tt.status, resp.StatusCode)

			if tt.status != http.StatusOK {
				assert.NotEmpty(t, decodeError(t, resp))
				return
			}
			var body payloadResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.want, body.Payload)
		})
	}
}

func TestQRCodePNG(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/api/v1/qrcode",
		`{"type":"phone","fields":{"number":"+123"},"size":256,"foreground":"#1a237e"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qrcode.png"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestQRCodeText(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/api/v1/qrcode?format=text", `{"type":"text","fields":{"text":"hi"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "█")
}

func TestQRCodeErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "size above maximum",
			body:   `{"type":"text","fields":{"text":"hi"},"size":5000}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "bad colour",
			body:   `{"type":"text","fields":{"text":"hi"},"background":"blue"}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown logo",
			body:   `{"type":"text","fields":{"text":"hi"},"logo":"myspace"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			body:   `{"type":"text","fields":{"text":"hi"},"colour":"red"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "content too long",
			body:   `{"type":"text","fields":{"text":"` + strings.Repeat("a", 5000) + `"}}`,
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/api/v1/qrcode", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, decodeError(t, resp))
		})
	}
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFromError(assert.AnError))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFromError(qr.ErrInvalidOptions))
}
