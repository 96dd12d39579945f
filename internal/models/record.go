package models

import "time"

type Record struct {
	RecordID      string     `json:"id"`
	RecordType    string     `json:"record_type"`
	Plate         string     `json:"plate,omitempty"`
	WorkOrder     string     `json:"work_order,omitempty"`
	VIN           string     `json:"vin,omitempty"`
	VINLast5      string     `json:"vin_last5,omitempty"`
	ReferenceNo   string     `json:"reference_no,omitempty"`
	CaseKey       string     `json:"case_key"`
	NoteText      string     `json:"note_text,omitempty"`
	Files         []FileItem `json:"files"`
	UserID        string     `json:"user_id"`
	BranchCode    string     `json:"branch_code"`
	CreatedByName string     `json:"created_by_name"`
	CreatedByRole string     `json:"created_by_role"`
	Status        string     `json:"status"`
	RejectReason  string     `json:"reject_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FileItem is embedded in Record.Files and owned by its parent record.
type FileItem struct {
	FileID       string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	MediaType    string    `json:"media_type"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

const (
	TypeStandard   = "standard"
	TypeRoadAssist = "roadassist"
	TypeDamaged    = "damaged"
	TypePDI        = "pdi"
)

const (
	StatusActive        = "active"
	StatusPendingReview = "pending_review"
	StatusApproved      = "approved"
	StatusRejected      = "rejected"
	StatusDeleted       = "deleted"
)

const (
	MediaPhoto = "photo"
	MediaVideo = "video"
	MediaPDF   = "pdf"
)

func ValidRecordType(value string) bool {
	switch value {
	case TypeStandard, TypeRoadAssist, TypeDamaged, TypePDI:
		return true
	}
	return false
}
