package auth

import (
	"errors"
	"net/http"
	"strings"

	"vidtube/httputil"
	"vidtube/logging"
)

// Cookie names carrying the tokens.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// TokenFromRequest reads the access token from the accessToken cookie or an
// Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessCookie); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// authenticate resolves the request's token to a user. A nil user with a nil
// error means no credentials were presented.
func (h *Handler) authenticate(r *http.Request) (*User, error) {
	tokenStr := TokenFromRequest(r)
	if tokenStr == "" {
		return nil, nil
	}
	userID, err := h.Tokens.ParseAccessToken(tokenStr)
	if err != nil {
		return nil, httputil.NewError(http.StatusUnauthorized, "invalid access token")
	}
	u, err := LoadUser(r.Context(), h.DB, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, httputil.NewError(http.StatusUnauthorized, "invalid access token")
	}
	return u, err
}

// AuthMiddleware requires a valid access token and puts the user into the context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := h.authenticate(r)
		if err != nil {
			httputil.FailErr(w, r, err)
			return
		}
		if u == nil {
			httputil.Fail(w, http.StatusUnauthorized, "unauthorized request")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// OptionalAuth injects the user into the context if a valid token is present,
// but does not reject unauthenticated requests.
func (h *Handler) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := h.authenticate(r)
		var apiErr *httputil.APIError
		if err != nil && !errors.As(err, &apiErr) {
			logging.FromContext(r.Context()).Warn("optional auth lookup failed", "err", err)
		}
		if u != nil {
			r = r.WithContext(WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}
