package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/auth"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/logger"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestID propagates or assigns a request id and attaches a request-scoped logger.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := logger.WithRequestID(r.Context(), id)
		ctx = logger.WithContext(ctx, s.log.With(zap.String("request_id", id)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// instrument must wrap the mux directly: the mux sets r.Pattern on the request it
// receives, which becomes the route label.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		took := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.httpMetrics.Observe(r.Method, route, rec.status, took)

		logger.FromContext(r.Context()).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", took))
	})
}

func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respondError(w, r, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, r, http.StatusUnauthorized, "Invalid authorization header format. Use: Bearer <token>")
			return
		}

		claims, err := s.auth.Validate(token)
		if err != nil {
			logger.FromContext(r.Context()).Warn("rejected token", zap.Error(err))
			respondError(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := auth.WithClaims(r.Context(), claims)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.Int64("user_id", claims.UserID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) adminOnly(next http.HandlerFunc) http.Handler {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())
		if !claims.IsAdmin() {
			respondError(w, r, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	})
}
