package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/secrets"
)

// CallerValidator validates a bearer token and resolves the caller it names.
type CallerValidator interface {
	ValidateCaller(tokenString string) (domain.CallerID, error)
}

// APIKeys maps caller ids to bcrypt hashes of their issued API keys. Loaded
// from configuration for callers that cannot mint JWTs; an empty map
// disables the key path.
type APIKeys map[domain.CallerID]string

// Authenticate verifies a presented key against the caller's stored hash.
func (k APIKeys) Authenticate(callerID domain.CallerID, presented string) error {
	hash, ok := k[callerID]
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "unknown caller")
	}
	return secrets.Verify(presented, hash)
}

type contextKeyCallerID struct{}

// GetCallerID retrieves the authenticated caller from the context. Empty
// when the request did not pass RequireCaller.
func GetCallerID(ctx context.Context) domain.CallerID {
	callerID, _ := ctx.Value(contextKeyCallerID{}).(domain.CallerID)
	return callerID
}

// WithCallerID injects a caller into a context. For tests.
func WithCallerID(ctx context.Context, callerID domain.CallerID) context.Context {
	return context.WithValue(ctx, contextKeyCallerID{}, callerID)
}

// RequireCaller rejects unauthenticated requests and stores the resolved
// caller in the request context. Callers present either a bearer token or an
// X-Caller-Id / X-Api-Key header pair checked against the configured hashes.
func RequireCaller(validator CallerValidator, keys APIKeys, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				callerID, err := validator.ValidateCaller(token)
				if err != nil {
					logger.WarnContext(r.Context(), "unauthorized request",
						"request_id", GetRequestID(r.Context()),
						"error", err)
					unauthorized(w, "Invalid or expired token")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithCallerID(r.Context(), callerID)))
				return
			}

			caller := r.Header.Get("X-Caller-Id")
			key := r.Header.Get("X-Api-Key")
			if caller == "" || key == "" {
				unauthorized(w, "Missing credentials")
				return
			}
			callerID, err := domain.ParseCallerID(caller)
			if err == nil {
				err = keys.Authenticate(callerID, key)
			}
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized request",
					"request_id", GetRequestID(r.Context()),
					"caller_id", caller,
					"error", err)
				unauthorized(w, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCallerID(r.Context(), callerID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
