package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vidtube/db"
	"vidtube/httputil"
	"vidtube/logging"
	"vidtube/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt rejects passwords longer than 72 bytes.
const (
	maxPasswordLen     = 72
	msgPasswordTooLong = "password must be at most 72 bytes"
)

// Handler holds dependencies for account and session endpoints.
type Handler struct {
	DB             *db.CompatDB
	Media          storage.MediaStore
	Tokens         TokenConfig
	CookieSecure   bool
	MaxUploadBytes int64
	// BcryptCost defaults to bcrypt.DefaultCost when zero.
	BcryptCost int
}

func (h *Handler) bcryptCost() int {
	if h.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return h.BcryptCost
}

type registerForm struct {
	FullName string `form:"full_name" validate:"notblank"`
	Username string `form:"username" validate:"notblank,max=30"`
	Email    string `form:"email" validate:"notblank,contains=@"`
	Password string `form:"password" validate:"notblank,min=8,max=72"`
}

// HandleRegister creates an account from a multipart form with an avatar and
// an optional cover image.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := httputil.ParseMultipart(w, r, h.MaxUploadBytes); err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	form := registerForm{
		FullName: strings.TrimSpace(r.FormValue("full_name")),
		Username: strings.ToLower(strings.TrimSpace(r.FormValue("username"))),
		Email:    strings.ToLower(strings.TrimSpace(r.FormValue("email"))),
		Password: r.FormValue("password"),
	}
	if err := httputil.Validate(form); err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	if len(form.Password) > maxPasswordLen {
		httputil.Fail(w, http.StatusBadRequest, msgPasswordTooLong)
		return
	}

	ctx := r.Context()
	var taken int
	err := h.DB.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username = ? OR email = ?`, form.Username, form.Email).Scan(&taken)
	if err == nil {
		httputil.Fail(w, http.StatusConflict, "user with email or username already exists")
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		httputil.FailErr(w, r, fmt.Errorf("check existing user: %w", err))
		return
	}

	avatarFile := httputil.FormFile(r, "avatar")
	if avatarFile == nil {
		httputil.Fail(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	avatarURL, err := storage.UploadImage(ctx, h.Media, storage.FolderAvatars, avatarFile, storage.AvatarMaxSide, storage.AvatarMaxSide)
	if err != nil {
		logging.FromContext(ctx).Warn("avatar upload failed", "err", err)
		httputil.Fail(w, http.StatusBadRequest, "failed to upload avatar")
		return
	}
	var coverURL string
	if coverFile := httputil.FormFile(r, "cover_image"); coverFile != nil {
		coverURL, err = storage.UploadImage(ctx, h.Media, storage.FolderCovers, coverFile, storage.CoverMaxWidth, storage.CoverMaxHeight)
		if err != nil {
			storage.Discard(ctx, h.Media, avatarURL)
			logging.FromContext(ctx).Warn("cover upload failed", "err", err)
			httputil.Fail(w, http.StatusBadRequest, "failed to upload cover image")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), h.bcryptCost())
	if err != nil {
		httputil.FailErr(w, r, fmt.Errorf("hash password: %w", err))
		return
	}

	userID := uuid.NewString()
	_, err = h.DB.ExecContext(ctx,
		`INSERT INTO users (id, username, email, full_name, avatar, cover_image, password_hash) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, form.Username, form.Email, form.FullName, avatarURL, coverURL, string(hash))
	if err != nil {
		storage.Discard(ctx, h.Media, avatarURL)
		storage.Discard(ctx, h.Media, coverURL)
		if db.IsUniqueViolation(err) {
			httputil.Fail(w, http.StatusConflict, "user with email or username already exists")
			return
		}
		httputil.FailErr(w, r, fmt.Errorf("create user: %w", err))
		return
	}

	u, err := LoadUser(ctx, h.DB, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusCreated, u, "user registered successfully")
}

// LoginRequest is the JSON body for POST /users/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"notblank,max=72"`
}

type sessionResponse struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// HandleLogin authenticates by username or email and starts a session.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.FailErr(w, r, err)
		return
	}

	ctx := r.Context()
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" && email == "" {
		httputil.Fail(w, http.StatusBadRequest, "username or email is required")
		return
	}

	var userID, hash string
	err := h.DB.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE username = ? OR email = ?`, username, email,
	).Scan(&userID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		httputil.Fail(w, http.StatusNotFound, "user does not exist")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, fmt.Errorf("find user: %w", err))
		return
	}
	if len(req.Password) > maxPasswordLen {
		httputil.Fail(w, http.StatusUnauthorized, "invalid user credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		httputil.Fail(w, http.StatusUnauthorized, "invalid user credentials")
		return
	}

	u, err := LoadUser(ctx, h.DB, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	session, err := h.startSession(ctx, u)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	h.setSessionCookies(w, session)
	session.User = u
	httputil.Respond(w, http.StatusOK, session, "user logged in successfully")
}

// startSession issues a token pair and stores the refresh token hash.
func (h *Handler) startSession(ctx context.Context, u *User) (*sessionResponse, error) {
	access, err := h.Tokens.GenerateAccessToken(u)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := h.Tokens.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	if _, err := h.DB.ExecContext(ctx,
		`UPDATE users SET refresh_token = ? WHERE id = ?`, hashToken(refresh), u.ID); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &sessionResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (h *Handler) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, s *sessionResponse) {
	http.SetCookie(w, h.cookie(AccessCookie, s.AccessToken, int(h.Tokens.AccessTTL.Seconds())))
	http.SetCookie(w, h.cookie(RefreshCookie, s.RefreshToken, int(h.Tokens.RefreshTTL.Seconds())))
}

// HandleLogout forgets the stored refresh token and clears both cookies.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, _ := ExtractUserID(r)
	if _, err := h.DB.ExecContext(r.Context(),
		`UPDATE users SET refresh_token = NULL WHERE id = ?`, userID); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("clear refresh token: %w", err))
		return
	}
	http.SetCookie(w, h.cookie(AccessCookie, "", -1))
	http.SetCookie(w, h.cookie(RefreshCookie, "", -1))
	httputil.Respond(w, http.StatusOK, map[string]interface{}{}, "user logged out")
}

// HandleRefreshToken rotates the token pair. The refresh token comes from the
// refreshToken cookie or a refresh_token JSON field.
func (h *Handler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var incoming string
	if c, err := r.Cookie(RefreshCookie); err == nil {
		incoming = c.Value
	}
	if incoming == "" && r.Body != nil {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, httputil.DefaultBodyLimit)).Decode(&body); err == nil {
			incoming = strings.TrimSpace(body.RefreshToken)
		}
	}
	if incoming == "" {
		httputil.Fail(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	userID, err := h.Tokens.ParseRefreshToken(incoming)
	if err != nil {
		httputil.Fail(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	ctx := r.Context()
	var stored sql.NullString
	err = h.DB.QueryRowContext(ctx, `SELECT refresh_token FROM users WHERE id = ?`, userID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		httputil.Fail(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, fmt.Errorf("load refresh token: %w", err))
		return
	}
	if !tokenMatches(incoming, stored.String) {
		httputil.Fail(w, http.StatusUnauthorized, "refresh token is expired or used")
		return
	}

	u, err := LoadUser(ctx, h.DB, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	session, err := h.startSession(ctx, u)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	h.setSessionCookies(w, session)
	httputil.Respond(w, http.StatusOK, session, "access token refreshed")
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"notblank"`
	NewPassword string `json:"new_password" validate:"notblank,min=8,max=72"`
}

// HandleChangePassword replaces the password after checking the old one.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	if len(req.NewPassword) > maxPasswordLen {
		httputil.Fail(w, http.StatusBadRequest, msgPasswordTooLong)
		return
	}
	userID, _ := ExtractUserID(r)
	ctx := r.Context()

	var hash string
	if err := h.DB.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = ?`, userID).Scan(&hash); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("load password: %w", err))
		return
	}
	if len(req.OldPassword) > maxPasswordLen ||
		bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.OldPassword)) != nil {
		httputil.Fail(w, http.StatusBadRequest, "invalid old password")
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.bcryptCost())
	if err != nil {
		httputil.FailErr(w, r, fmt.Errorf("hash password: %w", err))
		return
	}
	if _, err := h.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = `+h.DB.NowUTC()+` WHERE id = ?`, string(newHash), userID); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("update password: %w", err))
		return
	}
	httputil.Respond(w, http.StatusOK, map[string]interface{}{}, "password changed successfully")
}

// HandleCurrentUser returns the authenticated user.
func (h *Handler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r)
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "unauthorized request")
		return
	}
	httputil.Respond(w, http.StatusOK, u, "current user fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"full_name" validate:"notblank"`
	Email    string `json:"email" validate:"notblank,contains=@"`
}

// HandleUpdateAccount changes the full name and email.
func (h *Handler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	userID, _ := ExtractUserID(r)
	ctx := r.Context()

	_, err := h.DB.ExecContext(ctx,
		`UPDATE users SET full_name = ?, email = ?, updated_at = `+h.DB.NowUTC()+` WHERE id = ?`,
		strings.TrimSpace(req.FullName), strings.ToLower(strings.TrimSpace(req.Email)), userID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			httputil.Fail(w, http.StatusConflict, "email is already in use")
			return
		}
		httputil.FailErr(w, r, fmt.Errorf("update account: %w", err))
		return
	}
	u, err := LoadUser(ctx, h.DB, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, u, "account details updated successfully")
}

// HandleUpdateAvatar replaces the avatar image.
func (h *Handler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, imageField{
		form:   "avatar",
		column: "avatar",
		folder: storage.FolderAvatars,
		maxW:   storage.AvatarMaxSide,
		maxH:   storage.AvatarMaxSide,
		label:  "avatar",
	})
}

// HandleUpdateCoverImage replaces the cover image.
func (h *Handler) HandleUpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, imageField{
		form:   "cover_image",
		column: "cover_image",
		folder: storage.FolderCovers,
		maxW:   storage.CoverMaxWidth,
		maxH:   storage.CoverMaxHeight,
		label:  "cover image",
	})
}

type imageField struct {
	form, column, folder, label string
	maxW, maxH                  int
}

// replaceImage uploads a new profile image, points the user at it and then
// deletes the previous object.
func (h *Handler) replaceImage(w http.ResponseWriter, r *http.Request, f imageField) {
	if err := httputil.ParseMultipart(w, r, h.MaxUploadBytes); err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	fh := httputil.FormFile(r, f.form)
	if fh == nil {
		httputil.Fail(w, http.StatusBadRequest, f.label+" file is missing")
		return
	}
	ctx := r.Context()
	current, ok := CurrentUser(r)
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	url, err := storage.UploadImage(ctx, h.Media, f.folder, fh, f.maxW, f.maxH)
	if err != nil {
		logging.FromContext(ctx).Warn("image upload failed", "field", f.form, "err", err)
		httputil.Fail(w, http.StatusBadRequest, "failed to upload "+f.label)
		return
	}

	old := current.Avatar
	if f.column == "cover_image" {
		old = current.CoverImage
	}
	if _, err := h.DB.ExecContext(ctx,
		`UPDATE users SET `+f.column+` = ?, updated_at = `+h.DB.NowUTC()+` WHERE id = ?`, url, current.ID); err != nil {
		storage.Discard(ctx, h.Media, url)
		httputil.FailErr(w, r, fmt.Errorf("update %s: %w", f.column, err))
		return
	}
	storage.Discard(ctx, h.Media, old)

	u, err := LoadUser(ctx, h.DB, current.ID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, u, f.label+" updated successfully")
}
