package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"product-media/internal/database"
	"product-media/internal/logging"
)

// LoginRequest represents a login request with password only
type LoginRequest struct {
	Password string `json:"password"`
}

// SetupRequest represents an initial setup request to create the password
type SetupRequest struct {
	Password string `json:"password"`
}

// AuthResponse represents the response from authentication endpoints
type AuthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"` // Seconds until session expires
}

// SessionCookieName is the name of the session cookie
const SessionCookieName = "product_media_session"

// CheckSetupRequired returns whether initial setup is needed
func (h *Handlers) CheckSetupRequired(w http.ResponseWriter, r *http.Request) {
	hasUsers, err := h.db.HasUsers(r.Context())
	if err != nil {
		logging.Error("failed to check users: %v", err)
		writeJSONError(w, "Failed to check setup state", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{
		"needsSetup": !hasUsers,
	})
}

// Setup creates the initial admin password
func (h *Handlers) Setup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hasUsers, err := h.db.HasUsers(ctx)
	if err != nil {
		logging.Error("failed to check users: %v", err)
		writeJSONError(w, "Failed to check setup state", http.StatusInternalServerError)
		return
	}
	if hasUsers {
		writeJSONError(w, "Setup already completed", http.StatusForbidden)
		return
	}

	var req SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Password) < 6 {
		writeJSONError(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}
	if len(req.Password) > 72 {
		// bcrypt truncates beyond 72 bytes
		writeJSONError(w, "Password must not exceed 72 characters", http.StatusBadRequest)
		return
	}

	if err := h.db.CreateUser(ctx, req.Password); err != nil {
		logging.Error("Failed to create user: %v", err)
		writeJSONError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	logging.Info("Initial password configured")

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{
		Success: true,
		Message: "Password configured successfully",
	})
}

// Login authenticates with password and issues a session cookie
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := h.db.ValidatePassword(ctx, req.Password)
	if errors.Is(err, database.ErrInvalidCredentials) {
		logging.Warn("Failed login attempt")
		writeJSONError(w, "Invalid password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		logging.Error("failed to validate password: %v", err)
		writeJSONError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	token, err := h.db.CreateSession(ctx, userID)
	if err != nil {
		logging.Error("Failed to create session: %v", err)
		writeJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(database.SessionDuration),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{
		Success:   true,
		ExpiresIn: int(database.SessionDuration.Seconds()),
	})
}

// Logout ends the current session
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		// Best-effort: logout must succeed even if the session row is gone.
		if err := h.db.DeleteSession(r.Context(), cookie.Value); err != nil {
			logging.Error("failed to delete session during logout: %v", err)
		}
	}

	clearSessionCookie(w)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

// CheckAuth verifies the current session
func (h *Handlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := h.db.ValidateSession(r.Context(), cookie.Value); err != nil {
		clearSessionCookie(w)
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{
		Success:   true,
		ExpiresIn: int(database.SessionDuration.Seconds()),
	})
}

// AuthMiddleware protects write routes. Reads stay public: the storefront
// fetches galleries and variant files without a session, while uploads,
// edits and deletes require the admin cookie.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requiresAuth(r) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if _, err := h.db.ValidateSession(r.Context(), cookie.Value); err != nil {
			clearSessionCookie(w)
			writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requiresAuth(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/auth/") ||
		r.URL.Path == "/health" ||
		r.URL.Path == "/version" ||
		strings.HasPrefix(r.URL.Path, "/files/") {
		return false
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
