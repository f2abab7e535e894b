package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/utils"
)

// Key type for context
type contextKey string

const userContextKey = contextKey("user")

// AuthMiddleware verifies bearer tokens and attaches the resolved user to
// the request context.
type AuthMiddleware struct {
	tokens *utils.TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(tokens *utils.TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Authenticate requires a valid "Authorization: Bearer <token>" header,
// resolves the full user record (minus password) by the token's id claim
// and stores it in the request context for downstream handlers.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.RespondError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.RespondError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims, err := m.tokens.Parse(parts[1])
		if err != nil {
			utils.RespondError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.RespondError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		user, err := m.users.FindByID(r.Context(), userID)
		if err != nil {
			utils.RespondError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		user.Password = ""

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAdmin ensures the authenticated user holds the admin role. It
// composes after Authenticate and has no side effects.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok || !user.IsAdmin() {
			utils.RespondError(w, http.StatusForbidden, "Not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFrom extracts the authenticated user attached by Authenticate.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}
