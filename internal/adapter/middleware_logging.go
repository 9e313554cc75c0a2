package adapter

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-crm-sync/internal/logger"
)

// statusRecorder remembers the status code and body size written by the
// wrapped handler.
type statusRecorder struct {
	http.ResponseWriter

	status      int
	wroteHeader bool
	size        int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// withLogging logs one line per callback request. Query strings are not
// logged because they carry the authorisation code.
func withLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rw, r)

			log.Info().
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Int("status", rw.status).
				Dur("duration", time.Since(start)).
				Int("size", rw.size).
				Msg("oauth callback request")
		})
	}
}
