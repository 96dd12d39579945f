package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gks/record-service/internal/media"
	"gks/record-service/internal/storage"
	"gks/record-service/internal/store"
)

const (
	serviceVersion = "1.3.0"
	apiVersion     = "v1"
)

type Handler struct {
	store     store.Store
	jwtSecret string
	tokenTTL  time.Duration
	uploadDir string
}

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	UploadDir string
}

func NewHandler(store store.Store, options Options) *Handler {
	return &Handler{
		store:     store,
		jwtSecret: options.JWTSecret,
		tokenTTL:  options.TokenTTL,
		uploadDir: options.UploadDir,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/", h.handleAPIRoot)
	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/logout", h.handleLogout)
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/me", h.handleMe)
	mux.HandleFunc("/api/records", h.handleRecords)
	mux.HandleFunc("/api/records/", h.handleRecordSubtree)
	mux.HandleFunc("/api/notifications", h.handleNotifications)
	mux.HandleFunc("/api/notifications/read-all", h.handleNotificationsReadAll)
	mux.HandleFunc("/api/notifications/", h.handleNotificationSubtree)
	mux.HandleFunc("/api/staff", h.handleStaff)
	mux.HandleFunc("/api/staff/", h.handleStaffSubtree)
	mux.HandleFunc("/api/apprentices", h.handleApprentices)
	mux.HandleFunc("/api/branches", h.handleBranches)
	mux.HandleFunc("/api/job-titles", h.handleJobTitles)
	mux.HandleFunc("/api/settings", h.handleSettings)
	mux.HandleFunc("/api/services/status", h.handleServicesStatus)
	mux.HandleFunc("/api/storage/providers", h.handleStorageProviders)
	mux.HandleFunc("/api/stats", h.handleStats)
	mux.HandleFunc("/api/my-stats", h.handleMyStats)
	mux.HandleFunc("/api/ocr/detect-plate", h.handleDetectPlate)
	mux.HandleFunc("/api/ocr/detect-text", h.handleDetectText)
	mux.HandleFunc("/api/voice/transcribe", h.handleTranscribe)
	return AuthMiddleware(h, mux)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleAPIRoot answers the bare /api/ prefix; anything else falling
// through the subtree registration is unknown.
func (h *Handler) handleAPIRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/" && r.URL.Path != "/api" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"name":        "record-service",
		"version":     serviceVersion,
		"api_version": apiVersion,
		"status":      "ok",
	})
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"version":     serviceVersion,
		"api_version": apiVersion,
	})
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mapError(err error) (int, string, string) {
	var validation *store.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "validation_error", validation.Error()
	case errors.Is(err, store.ErrRecordNotFound):
		return http.StatusNotFound, "record_not_found", "record not found"
	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", "user not found"
	case errors.Is(err, store.ErrFileNotFound):
		return http.StatusNotFound, "file_not_found", "file not found"
	case errors.Is(err, store.ErrNotificationNotFound):
		return http.StatusNotFound, "notification_not_found", "notification not found"
	case errors.Is(err, store.ErrUsernameTaken):
		return http.StatusConflict, "username_taken", "username already exists"
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid username or password"
	case errors.Is(err, store.ErrBranchMismatch):
		return http.StatusForbidden, "branch_mismatch", "record belongs to a different branch"
	case errors.Is(err, store.ErrAccessDenied):
		return http.StatusForbidden, "access_denied", "access denied"
	case errors.Is(err, media.ErrUnknownMediaType):
		return http.StatusBadRequest, "invalid_media_type", "media_type must be photo, video, or pdf"
	case errors.Is(err, media.ErrBadExtension):
		return http.StatusBadRequest, "invalid_extension", "file extension not allowed for media type"
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusBadRequest, "file_too_large", "file exceeds size limit for media type"
	case errors.Is(err, storage.ErrNotConfigured):
		return http.StatusServiceUnavailable, "storage_not_configured", "storage provider not configured"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
