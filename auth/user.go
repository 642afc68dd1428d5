package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"vidtube/db"
)

// User is the public account record. The password hash and refresh token
// never leave the database layer.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"cover_image"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ErrUserNotFound is returned by LoadUser for unknown ids.
var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, username, email, full_name, avatar, cover_image, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// LoadUser fetches a user by id.
func LoadUser(ctx context.Context, q db.Querier, id string) (*User, error) {
	return scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

type contextKey string

// UserIDKey is the context key used to store the authenticated user ID.
const UserIDKey contextKey = "user_id"

const userKey contextKey = "user"

// WithUser stores the authenticated user and its id on ctx.
func WithUser(ctx context.Context, u *User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, u.ID)
	return context.WithValue(ctx, userKey, u)
}

// ExtractUserID returns the user ID from the request context, if present.
func ExtractUserID(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(UserIDKey).(string)
	return uid, ok && uid != ""
}

// CurrentUser returns the authenticated user loaded by the middleware.
func CurrentUser(r *http.Request) (*User, bool) {
	u, ok := r.Context().Value(userKey).(*User)
	return u, ok && u != nil
}
