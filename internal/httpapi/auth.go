package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gks/record-service/internal/auth"
	"gks/record-service/internal/models"
	"gks/record-service/internal/store"
)

type userContextKey struct{}

// AuthMiddleware verifies the bearer token and loads the caller before
// any protected handler runs. The user row is fetched on every request
// so a hard-deleted account loses access immediately, token or not.
func AuthMiddleware(h *Handler, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r) {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		claims, err := auth.VerifyToken(h.jwtSecret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		user, err := h.store.GetUser(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized", "unknown user")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) (models.User, bool) {
	value := ctx.Value(userContextKey{})
	if value == nil {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	if !ok {
		return models.User{}, false
	}
	return user, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return models.User{}, false
	}
	return user, true
}

func requireRole(w http.ResponseWriter, r *http.Request, roles ...string) (models.User, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return models.User{}, false
	}
	for _, role := range roles {
		if user.Role == role {
			return user, true
		}
	}
	writeError(w, http.StatusForbidden, "access_denied", "access denied")
	return models.User{}, false
}

// canSeeRecord scopes non-admin readers to their own branch. Records
// outside the branch look like they do not exist.
func canSeeRecord(user models.User, rec models.Record) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	return rec.BranchCode == user.BranchCode
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func isPublicEndpoint(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/api/", "/api", "/api/version", "/api/auth/login", "/api/branches", "/api/job-titles":
		return true
	default:
		return r.Method == http.MethodOptions
	}
}
