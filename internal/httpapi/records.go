package httpapi

import (
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"gks/record-service/internal/branch"
	"gks/record-service/internal/media"
	"gks/record-service/internal/models"
	"gks/record-service/internal/storage"
	"gks/record-service/internal/store"

	"github.com/google/uuid"
)

type createRecordRequest struct {
	RecordType  string `json:"record_type"`
	Plate       string `json:"plate"`
	WorkOrder   string `json:"work_order"`
	VIN         string `json:"vin"`
	ReferenceNo string `json:"reference_no"`
	NoteText    string `json:"note_text"`
	BranchCode  string `json:"branch_code"`
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateRecord(w, r)
	case http.MethodGet:
		h.handleListRecords(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createRecordRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	req.RecordType = strings.TrimSpace(req.RecordType)
	req.Plate = strings.ToUpper(strings.TrimSpace(req.Plate))
	req.WorkOrder = strings.TrimSpace(req.WorkOrder)
	req.VIN = strings.ToUpper(strings.TrimSpace(req.VIN))
	req.ReferenceNo = strings.TrimSpace(req.ReferenceNo)
	req.BranchCode = strings.TrimSpace(req.BranchCode)

	if !models.ValidRecordType(req.RecordType) {
		writeError(w, http.StatusBadRequest, "invalid_request", "record_type must be standard, roadassist, damaged, or pdi")
		return
	}
	if req.BranchCode != "" && !branch.Valid(req.BranchCode) {
		writeError(w, http.StatusBadRequest, "invalid_request", "branch_code is not a known branch")
		return
	}

	rec, err := h.store.CreateRecord(r.Context(), store.CreateRecordInput{
		RecordType:  req.RecordType,
		Plate:       req.Plate,
		WorkOrder:   req.WorkOrder,
		VIN:         req.VIN,
		ReferenceNo: req.ReferenceNo,
		NoteText:    req.NoteText,
		BranchCode:  req.BranchCode,
		Creator:     user,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	input := store.ListRecordsInput{
		RecordType: strings.TrimSpace(query.Get("record_type")),
		BranchCode: strings.TrimSpace(query.Get("branch_code")),
		Status:     strings.TrimSpace(query.Get("status")),
		Search:     strings.TrimSpace(query.Get("search")),
		SortBy:     strings.TrimSpace(query.Get("sort_by")),
		SortOrder:  strings.TrimSpace(query.Get("sort_order")),
	}
	if input.RecordType != "" && !models.ValidRecordType(input.RecordType) {
		writeError(w, http.StatusBadRequest, "invalid_request", "record_type must be standard, roadassist, damaged, or pdi")
		return
	}
	if raw := strings.TrimSpace(query.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "year must be a positive integer")
			return
		}
		input.Year = year
	}
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "page must be a positive integer")
			return
		}
		input.Page = page
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		input.Limit = limit
	}

	// Non-admins only ever see their own branch.
	if user.Role != models.RoleAdmin {
		if input.BranchCode != "" && input.BranchCode != user.BranchCode {
			writeError(w, http.StatusForbidden, "branch_mismatch", "record belongs to a different branch")
			return
		}
		input.BranchCode = user.BranchCode
	}

	records, err := h.store.ListRecords(r.Context(), input)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleRecordSubtree(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/api/records/")
	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	recordID := parts[0]
	if _, err := uuid.Parse(recordID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "record id must be a UUID")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGetRecord(w, r, recordID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDeleteRecord(w, r, recordID)
	case len(parts) == 2 && parts[1] == "note" && r.Method == http.MethodPut:
		h.handleUpdateNote(w, r, recordID)
	case len(parts) == 2 && parts[1] == "approve" && r.Method == http.MethodPost:
		h.handleReview(w, r, recordID, true)
	case len(parts) == 2 && parts[1] == "reject" && r.Method == http.MethodPost:
		h.handleReview(w, r, recordID, false)
	case len(parts) == 2 && parts[1] == "notify" && r.Method == http.MethodPost:
		h.handleNotifyCreator(w, r, recordID)
	case len(parts) == 2 && parts[1] == "files" && r.Method == http.MethodPost:
		h.handleUploadFile(w, r, recordID)
	case len(parts) == 3 && parts[1] == "files" && r.Method == http.MethodDelete:
		h.handleDeleteFile(w, r, recordID, parts[2])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// scopedRecord loads a record and hides it from callers outside its
// branch.
func (h *Handler) scopedRecord(w http.ResponseWriter, r *http.Request, user models.User, recordID string) (models.Record, bool) {
	rec, err := h.store.GetRecord(r.Context(), recordID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return models.Record{}, false
	}
	if !canSeeRecord(user, rec) {
		writeError(w, http.StatusNotFound, "record_not_found", "record not found")
		return models.Record{}, false
	}
	return rec, true
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request, recordID string) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	rec, ok := h.scopedRecord(w, r, user, recordID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request, recordID string) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if _, ok := h.scopedRecord(w, r, user, recordID); !ok {
		return
	}
	if err := h.store.SoftDeleteRecord(r.Context(), recordID); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.StatusDeleted})
}

func (h *Handler) handleUpdateNote(w http.ResponseWriter, r *http.Request, recordID string) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		NoteText string `json:"note_text"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}
	if _, ok := h.scopedRecord(w, r, user, recordID); !ok {
		return
	}
	if err := h.store.UpdateNote(r.Context(), recordID, req.NoteText); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	rec, err := h.store.GetRecord(r.Context(), recordID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request, recordID string, approve bool) {
	user, ok := requireRole(w, r, models.RoleAdmin, models.RoleStaff)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 {
		if !decodeRequest(w, r, &req) {
			return
		}
	}

	// Staff reviews are branch-scoped at the store; admins pass an empty
	// scope and can review any branch.
	scope := ""
	if user.Role == models.RoleStaff {
		scope = user.BranchCode
	}
	input := store.ReviewInput{
		RecordID:   recordID,
		Reviewer:   user,
		BranchCode: scope,
		Reason:     strings.TrimSpace(req.Reason),
		OccurredAt: time.Now().UTC(),
	}

	var rec models.Record
	var err error
	if approve {
		rec, err = h.store.ApproveRecord(r.Context(), input)
	} else {
		rec, err = h.store.RejectRecord(r.Context(), input)
	}
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleNotifyCreator(w http.ResponseWriter, r *http.Request, recordID string) {
	user, ok := requireRole(w, r, models.RoleAdmin, models.RoleStaff)
	if !ok {
		return
	}

	var req struct {
		NotificationType string `json:"notification_type"`
		Message          string `json:"message"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}
	req.NotificationType = strings.TrimSpace(req.NotificationType)
	if req.NotificationType != models.NotifMissingDocument && req.NotificationType != models.NotifRetakePhoto {
		writeError(w, http.StatusBadRequest, "invalid_request", "notification_type must be missing_document or retake_photo")
		return
	}

	rec, ok := h.scopedRecord(w, r, user, recordID)
	if !ok {
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		if req.NotificationType == models.NotifMissingDocument {
			message = "Missing document requested for record " + rec.CaseKey
		} else {
			message = "Photo retake requested for record " + rec.CaseKey
		}
	}

	notification, err := h.store.CreateNotification(r.Context(), store.CreateNotificationInput{
		RecordID:      rec.RecordID,
		Sender:        user,
		RecipientID:   rec.UserID,
		RecipientName: rec.CreatedByName,
		Type:          req.NotificationType,
		Message:       message,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

func (h *Handler) handleUploadFile(w http.ResponseWriter, r *http.Request, recordID string) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	rec, ok := h.scopedRecord(w, r, user, recordID)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid multipart payload")
		return
	}
	mediaType := strings.TrimSpace(r.FormValue("media_type"))

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "file field is required")
		return
	}
	defer file.Close()

	// Validate before reading the body so an oversized declaration fails
	// cheap; length is re-checked after reading.
	if err := media.Validate(mediaType, header.Filename, header.Size); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "failed to read upload")
		return
	}
	if err := media.Validate(mediaType, header.Filename, int64(len(data))); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	now := time.Now().UTC()
	seq := len(rec.Files) + 1
	filename := media.Filename(rec.RecordType, media.Identifier(rec), seq, header.Filename, now)
	relPath := path.Join(rec.RecordType, filename)

	provider := storage.FromSettings(settings, h.uploadDir)
	if err := provider.Save(r.Context(), relPath, data); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	item := models.FileItem{
		FileID:       uuid.NewString(),
		Filename:     filename,
		OriginalName: header.Filename,
		MediaType:    mediaType,
		Path:         relPath,
		Size:         int64(len(data)),
		UploadedAt:   now,
	}
	if err := h.store.AppendFile(r.Context(), recordID, item); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleDeleteFile(w http.ResponseWriter, r *http.Request, recordID, fileID string) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if _, ok := h.scopedRecord(w, r, user, recordID); !ok {
		return
	}

	removed, err := h.store.RemoveFile(r.Context(), recordID, fileID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	// The descriptor removal is the source of truth; missing bytes or an
	// unconfigured remote are tolerated here.
	provider := storage.FromSettings(settings, h.uploadDir)
	_ = provider.Delete(r.Context(), removed.Path)

	writeJSON(w, http.StatusOK, removed)
}
