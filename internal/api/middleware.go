package api

import (
	"net/http"

	"github.com/google/uuid"
)

func (api *API) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := NewWrapResponseWriter(w, r.ProtoMajor)

		requestID := uuid.NewString()
		ww.Header().Set("X-Request-Id", requestID)

		defer func() {
			api.log.Infow("request",
				"id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytesWritten", ww.BytesWritten(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

type wrapResponseWriter struct {
	http.ResponseWriter
	status       int
	bytesWritten int
}

func NewWrapResponseWriter(w http.ResponseWriter, protoMajor int) *wrapResponseWriter {
	// Default the status code to 200
	return &wrapResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (wr *wrapResponseWriter) WriteHeader(code int) {
	wr.status = code
	wr.ResponseWriter.WriteHeader(code)
}

func (wr *wrapResponseWriter) Write(b []byte) (int, error) {
	size, err := wr.ResponseWriter.Write(b)
	wr.bytesWritten += size
	return size, err
}

func (wr *wrapResponseWriter) Status() int {
	return wr.status
}

func (wr *wrapResponseWriter) BytesWritten() int {
	return wr.bytesWritten
}
