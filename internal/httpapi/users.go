package httpapi

import (
	"net/http"
	"strings"
	"time"

	"gks/record-service/internal/auth"
	"gks/record-service/internal/branch"
	"gks/record-service/internal/models"
	"gks/record-service/internal/store"

	"github.com/google/uuid"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	user, err := h.store.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	token, expiresAt, err := auth.IssueToken(h.jwtSecret, user, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.store.SetOnline(r.Context(), user.UserID, false); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type registerRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	BranchCode string `json:"branch_code"`
	JobTitle   string `json:"job_title"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	var req registerRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Role = strings.TrimSpace(req.Role)
	req.BranchCode = strings.TrimSpace(req.BranchCode)
	req.JobTitle = strings.TrimSpace(req.JobTitle)

	if req.Username == "" || req.Password == "" || req.FullName == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username, password, and full_name are required")
		return
	}
	if req.Role != models.RoleStaff && req.Role != models.RoleApprentice {
		writeError(w, http.StatusBadRequest, "invalid_request", "role must be staff or apprentice")
		return
	}
	if !branch.Valid(req.BranchCode) {
		writeError(w, http.StatusBadRequest, "invalid_request", "branch_code is not a known branch")
		return
	}
	if req.JobTitle != "" && !branch.ValidJobTitle(req.JobTitle) {
		writeError(w, http.StatusBadRequest, "invalid_request", "job_title is not a known job title")
		return
	}

	user, err := h.store.CreateUser(r.Context(), store.CreateUserInput{
		Username:   req.Username,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       req.Role,
		BranchCode: req.BranchCode,
		JobTitle:   req.JobTitle,
		Phone:      strings.TrimSpace(req.Phone),
		Email:      strings.TrimSpace(req.Email),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleStaff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	includeApprentices := r.URL.Query().Get("include_apprentices") == "true"
	users, err := h.store.ListStaff(r.Context(), includeApprentices)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleStaffSubtree(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	userID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/staff/"), "/")
	if _, err := uuid.Parse(userID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "user id must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.handleUpdateStaff(w, r, userID)
	case http.MethodDelete:
		h.handleDeleteStaff(w, r, userID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUpdateStaff(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		FullName   string `json:"full_name"`
		BranchCode string `json:"branch_code"`
		JobTitle   string `json:"job_title"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}
	req.BranchCode = strings.TrimSpace(req.BranchCode)
	req.JobTitle = strings.TrimSpace(req.JobTitle)
	if req.BranchCode != "" && !branch.Valid(req.BranchCode) {
		writeError(w, http.StatusBadRequest, "invalid_request", "branch_code is not a known branch")
		return
	}
	if req.JobTitle != "" && !branch.ValidJobTitle(req.JobTitle) {
		writeError(w, http.StatusBadRequest, "invalid_request", "job_title is not a known job title")
		return
	}

	user, err := h.store.UpdateStaff(r.Context(), store.UpdateStaffInput{
		UserID:     userID,
		FullName:   strings.TrimSpace(req.FullName),
		BranchCode: req.BranchCode,
		JobTitle:   req.JobTitle,
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeleteStaff(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.store.DeleteStaff(r.Context(), userID); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleApprentices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireRole(w, r, models.RoleAdmin, models.RoleStaff); !ok {
		return
	}
	users, err := h.store.ListApprentices(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleBranches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, branch.All())
}

func (h *Handler) handleJobTitles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, branch.JobTitles())
}
