package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/campusnest/internal/auth"
	"github.com/avstrong/campusnest/internal/rental"
)

func (s *Server) loggerMiddleware() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now().UTC()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			var traceID string

			if spanTraceID := uuid.UUID(trace.SpanContextFromContext(r.Context()).TraceID()); spanTraceID != uuid.Nil {
				traceID = spanTraceID.String()
			}

			s.l.Infow(
				"access",
				"method", r.Method,
				"url", r.URL.Path,
				"status", ww.Status(),
				"proto", r.Proto,
				"userAgent", r.Header.Get("User-Agent"),
				"requestID", middleware.GetReqID(r.Context()),
				"traceID", traceID,
				"latency", time.Since(start).String(),
			)
		})
	}
}

func (s *Server) recoverMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if re := recover(); re != nil {
					err, ok := re.(error)
					if !ok {
						err = fmt.Errorf("%v: %w", re, ErrPanic)
					}

					s.l.LogErrorf("type: panic, error: %v", err)
					s.writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// authMiddleware requires a valid bearer token and stores the caller in ctx.
func (s *Server) authMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				s.writeMessage(w, http.StatusUnauthorized, "missing bearer token")

				return
			}

			principal, err := s.issuer.Parse(token)
			if err != nil {
				s.l.LogDebug("Rejected token: %v", err)
				s.writeMessage(w, http.StatusUnauthorized, "invalid token")

				return
			}

			next.ServeHTTP(w, r.WithContext(rental.NewContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func (s *Server) requireRole(role rental.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := rental.PrincipalFromContext(r.Context())
			if !ok || principal.Role != role {
				s.writeMessage(w, http.StatusForbidden, fmt.Sprintf("only %s accounts may do this", role))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) applyMiddlewares(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}

	return h
}
