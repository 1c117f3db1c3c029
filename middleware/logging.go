package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// AccessLog writes one line per request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{w, http.StatusOK}

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.statusCode,
			"duration": time.Since(start).String(),
			"ip":       remoteHost(r),
			"xff":      r.Header.Get("X-Forwarded-For"),
		}).Info("request")
	})
}
