package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/reelstack/apiserver/internal/services"
	"github.com/reelstack/apiserver/internal/session"
	"github.com/reelstack/apiserver/internal/store"
)

const (
	maxMultipartMemory = 8 << 20
	maxPictureBytes    = 16 << 20

	formFieldName     = "name"
	formFieldEmail    = "email"
	formFieldPassword = "password"
	formFieldAddress  = "address"
	formFieldPhone    = "phone"
	formFieldPicture  = "profilePicture"
)

// AuthHandler provides cookie-session authentication endpoints.
type AuthHandler struct {
	userService  *services.UserService
	sessions     *session.Manager
	cookieName   string
	secureCookie bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, sessions *session.Manager, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		sessions:     sessions,
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, sessions *session.Manager, cookieName string, secureCookie bool) {
	handler := NewAuthHandler(userService, sessions, cookieName, secureCookie)
	requireSession := RequireSession(sessions, cookieName)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.With(requireSession).Get("/session", handler.Session)
	r.With(requireSession).Get("/user", handler.Me)
}

// Register creates a new account from a multipart form. The profile
// picture part is optional.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := services.RegisterInput{
		Name:     strings.TrimSpace(r.FormValue(formFieldName)),
		Email:    strings.TrimSpace(r.FormValue(formFieldEmail)),
		Password: r.FormValue(formFieldPassword),
		Address:  strings.TrimSpace(r.FormValue(formFieldAddress)),
		Phone:    strings.TrimSpace(r.FormValue(formFieldPhone)),
	}
	if input.Name == "" || input.Email == "" || input.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	picture, err := parseProfilePicture(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.Register(r.Context(), input, picture)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials, creates a session, and sets the cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID, req.RememberMe)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.setSessionCookie(w, token, h.sessions.TTL(req.RememberMe))
	writeJSON(w, http.StatusOK, SessionResponse{
		UserID:     user.ID,
		UserName:   user.Name,
		UserAvatar: user.ProfilePicture,
	})
}

// Logout destroys the session and expires the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to destroy session")
		return
	}

	h.setSessionCookie(w, "", -time.Second)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Session returns the signed-in user's display summary.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		UserID:     user.ID,
		UserName:   user.Name,
		UserAvatar: user.ProfilePicture,
	})
}

// Me returns the signed-in user's profile summary.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
}

func (h *AuthHandler) loadUser(w http.ResponseWriter, r *http.Request) (user userView, ok bool) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return userView{}, false
	}

	loaded, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return userView{}, false
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return userView{}, false
	}

	return userView{
		ID:             loaded.ID,
		Name:           loaded.Name,
		Email:          loaded.Email,
		ProfilePicture: loaded.ProfilePicture,
	}, true
}

type userView struct {
	ID             int
	Name           string
	Email          string
	ProfilePicture string
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// SessionResponse is the display summary the web client keeps per session.
type SessionResponse struct {
	UserID     int    `json:"userId"`
	UserName   string `json:"userName"`
	UserAvatar string `json:"userAvatar"`
}

// ProfileResponse is the signed-in user's profile summary.
type ProfileResponse struct {
	UserID int    `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func parseProfilePicture(r *http.Request) (*services.ProfilePicture, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[formFieldPicture]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, errors.New("only one profile picture is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("failed to read profile picture")
	}

	data, err := readFileLimited(file, maxPictureBytes)
	_ = file.Close()
	if err != nil {
		return nil, err
	}

	return &services.ProfilePicture{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Content:     bytes.NewReader(data),
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
