package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"uri", r.RequestURI,
			"status", ww.Status(),
			"size", ww.BytesWritten(),
			"duration", time.Since(start),
		).Info("http request")
	})
}
