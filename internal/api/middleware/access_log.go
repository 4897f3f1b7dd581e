package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/septic-booking-service/pkg/logger"
)

// AccessLog пишет строку о каждом запросе с полем request_id.
// Должен стоять после RequestID.
func AccessLog(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			reqLog := log.With("request_id", GetRequestID(r.Context()))

			elapsed := time.Since(start).Round(time.Microsecond)
			switch {
			case recorder.status >= http.StatusInternalServerError:
				reqLog.Error("%s %s - %d (%s)", r.Method, r.URL.Path, recorder.status, elapsed)
			case recorder.status >= http.StatusBadRequest:
				reqLog.Warn("%s %s - %d (%s)", r.Method, r.URL.Path, recorder.status, elapsed)
			default:
				reqLog.Info("%s %s - %d (%s)", r.Method, r.URL.Path, recorder.status, elapsed)
			}
		})
	}
}
