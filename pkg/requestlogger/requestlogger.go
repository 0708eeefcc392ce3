package requestlogger

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog"
)

// Middleware logs a structured line for every request. Paths listed in
// pathFilters are skipped, which keeps health and metrics probes out of
// the logs.
func Middleware(logger zerolog.Logger, pathFilters ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			for _, filter := range pathFilters {
				if filter == r.URL.Path {
					next.ServeHTTP(w, r)
					return
				}
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			defer func() {
				bytesIn, err := strconv.Atoi(r.Header.Get("Content-Length"))
				if err != nil {
					bytesIn = 0
				}

				logger.Info().Timestamp().
					Str("remote_ip", r.RemoteAddr).
					Str("url", r.URL.Path).
					Str("proto", r.Proto).
					Str("method", r.Method).
					Str("user_agent", r.Header.Get("User-Agent")).
					Int("status", ww.Status()).
					Float64("latency_ms", float64(time.Since(start).Nanoseconds())/1e6).
					Int("bytes_in", bytesIn).
					Int("bytes_out", ww.BytesWritten()).
					Msg("incoming_request")
			}()

			next.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(fn)
	}
}
