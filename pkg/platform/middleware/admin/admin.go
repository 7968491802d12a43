// Package admin guards operator endpoints (restriction administration and
// manual KYC review) with bearer operator tokens.
package admin

import (
	"log/slog"
	"net/http"
	"strings"

	jwttoken "warden/internal/jwt_token"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/httputil"
	"warden/pkg/requestcontext"
)

// TokenValidator validates operator tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwttoken.Claims, error)
}

// RequireRole rejects requests without a valid operator token carrying role
// and records the token subject as the request actor.
func RequireRole(validator TokenValidator, role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "operator token missing", "request_id", requestID)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "operator token required"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "operator token rejected",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}
			if !claims.HasRole(role) {
				logger.WarnContext(ctx, "operator lacks role",
					"request_id", requestID,
					"subject", claims.Subject,
					"role", role,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, claims.Subject)))
		})
	}
}
