package handlers

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harudiary/haru-backend/internal/database"
	"github.com/harudiary/haru-backend/internal/models"
	"github.com/harudiary/haru-backend/internal/services"
	"github.com/harudiary/haru-backend/pkg/clientip"
	"github.com/harudiary/haru-backend/pkg/utils"
)

type SignupRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	RecoveryEmail string `json:"recovery_email,omitempty"` // Optional but recommended
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse returns only anonymous data plus the session token
type AuthResponse struct {
	Success      bool                   `json:"success"`
	Message      string                 `json:"message"`
	SessionToken string                 `json:"session_token,omitempty"`
	User         map[string]interface{} `json:"user,omitempty"`
}

// Signup handles user registration
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Validate username
	if err := utils.ValidateUsername(req.Username); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(AuthResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	// Validate password
	if len(req.Password) < 8 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(AuthResponse{
			Success: false,
			Message: "Password must be at least 8 characters",
		})
		return
	}

	normalizedUsername := utils.NormalizeUsername(req.Username)

	// Check if username already exists
	var existingUsername string
	err := database.PostgresDB.QueryRow(
		"SELECT username FROM users WHERE LOWER(username) = $1",
		normalizedUsername,
	).Scan(&existingUsername)
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(AuthResponse{
			Success: false,
			Message: "Username is already taken",
		})
		return
	} else if err != sql.ErrNoRows {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	tx, err := database.PostgresDB.Begin()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	userID := uuid.New()
	_, err = tx.Exec(`
		INSERT INTO users (id, username, password_hash, created_at, is_active)
		VALUES ($1, $2, $3, NOW(), TRUE)
	`, userID, normalizedUsername, hashedPassword)
	if err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	// If recovery email provided, encrypt and store it
	if req.RecoveryEmail != "" {
		emailEncrypted, err := utils.Encrypt(req.RecoveryEmail)
		if err != nil {
			http.Error(w, "Failed to encrypt recovery email", http.StatusInternalServerError)
			return
		}

		_, err = tx.Exec(`
			INSERT INTO user_recovery (id, user_id, email_encrypted, created_at, updated_at)
			VALUES (gen_random_uuid(), $1, $2, NOW(), NOW())
		`, userID, emailEncrypted)
		if err != nil {
			http.Error(w, "Failed to save recovery data", http.StatusInternalServerError)
			return
		}
	}

	if err = tx.Commit(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User: map[string]interface{}{
			"id":         userID.String(),
			"username":   normalizedUsername,
			"created_at": time.Now(),
		},
	})
}

// Signin handles user login. A successful login creates a 7-day Redis
// session and refreshes the user's screen-lock state for that session.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	normalizedUsername := utils.NormalizeUsername(req.Username)

	var userID uuid.UUID
	var passwordHash string
	var isActive bool
	var createdAt time.Time

	err := database.PostgresDB.QueryRow(`
		SELECT id, password_hash, created_at, is_active
		FROM users
		WHERE LOWER(username) = $1
	`, normalizedUsername).Scan(&userID, &passwordHash, &createdAt, &isActive)

	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		} else {
			http.Error(w, "Database error", http.StatusInternalServerError)
		}
		return
	}

	if !isActive {
		http.Error(w, "Account is inactive", http.StatusForbidden)
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	sessionToken, err := services.CreateSession(userID)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	// Bind the screen-lock state to this session so the lock status is
	// known before the first gated request
	lockRegistry.Attach(r.Context(), sessionToken, userID.String())

	// Track device for support purposes
	deviceToken := generateDeviceToken()
	ipAddress := clientip.RealClientIP(r)
	userAgent := r.UserAgent()

	// Ignore device tracking errors - not critical for login
	database.PostgresDB.Exec(`
		INSERT INTO user_devices (id, user_id, device_token, ip_address, user_agent, last_used, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (device_token) DO UPDATE SET
			user_id = $1,
			last_used = NOW(),
			ip_address = $3,
			user_agent = $4
	`, userID, deviceToken, ipAddress, userAgent)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Success:      true,
		Message:      "Login successful",
		SessionToken: sessionToken,
		User: map[string]interface{}{
			"id":         userID.String(),
			"username":   normalizedUsername,
			"created_at": createdAt,
		},
	})
}

type MeResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// GetMe returns the authenticated user's profile
func GetMe(w http.ResponseWriter, r *http.Request) {
	userID, sessionToken, ok := authenticatedUser(r)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	user := models.User{ID: userID}
	err := database.PostgresDB.QueryRow(`
		SELECT username, created_at, is_active FROM users WHERE id = $1 AND is_active = TRUE
	`, userID).Scan(&user.Username, &user.CreatedAt, &user.IsActive)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	// Re-attach after a server restart so the lock state survives
	lockRegistry.Attach(r.Context(), sessionToken, userID.String())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MeResponse{
		Success: true,
		Message: "Authenticated",
		User:    &user,
	})
}

// Signout invalidates the session and drops its screen-lock state
func Signout(w http.ResponseWriter, r *http.Request) {
	sessionToken := extractBearerToken(r)
	if sessionToken != "" {
		services.InvalidateSession(sessionToken)
		lockRegistry.Detach(sessionToken)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Signed out",
	})
}

// authenticatedUser resolves the bearer token to a user ID
func authenticatedUser(r *http.Request) (uuid.UUID, string, bool) {
	sessionToken := extractBearerToken(r)
	if sessionToken == "" {
		return uuid.Nil, "", false
	}
	userID, valid, err := services.ValidateSession(sessionToken)
	if err != nil || !valid {
		return uuid.Nil, "", false
	}
	return userID, sessionToken, true
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func generateDeviceToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
