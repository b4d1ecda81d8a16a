package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

const (
	HeaderTenant = "X-Tenant-ID"
	HeaderUser   = "X-User-ID"
	HeaderRoles  = "X-User-Roles"
)

// Scope puts the request's tenant and actor into the context. The gateway in
// front of the service authenticates callers and sets these headers.
func Scope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if raw := r.Header.Get(HeaderTenant); raw != "" {
			id, err := shared.ParseID[shared.TenantRef](raw)
			if err != nil {
				http.Error(w, "invalid "+HeaderTenant+" header", http.StatusBadRequest)
				return
			}
			ctx = shared.WithTenant(ctx, id)
		}
		if user := r.Header.Get(HeaderUser); user != "" {
			var roles []string
			for _, role := range strings.Split(r.Header.Get(HeaderRoles), ",") {
				if role = strings.TrimSpace(role); role != "" {
					roles = append(roles, role)
				}
			}
			ctx = shared.WithActor(ctx, shared.User{ID: user, RoleNames: roles})
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs one line per request with zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
