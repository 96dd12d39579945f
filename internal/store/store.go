package store

import (
	"context"
	"time"

	"gks/record-service/internal/models"
)

type CreateRecordInput struct {
	RecordType  string
	Plate       string
	WorkOrder   string
	VIN         string
	ReferenceNo string
	NoteText    string
	BranchCode  string
	Creator     models.User
	CreatedAt   time.Time
}

type ListRecordsInput struct {
	RecordType string
	BranchCode string
	Status     string
	Search     string
	Year       int
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// ReviewInput scopes an approve or reject action. BranchCode is empty
// for admins; for staff it is their own branch and the conditional
// update will not match records outside it.
type ReviewInput struct {
	RecordID   string
	Reviewer   models.User
	BranchCode string
	Reason     string
	OccurredAt time.Time
}

type CreateUserInput struct {
	Username   string
	Password   string
	FullName   string
	Role       string
	BranchCode string
	JobTitle   string
	Phone      string
	Email      string
}

type UpdateStaffInput struct {
	UserID     string
	FullName   string
	BranchCode string
	JobTitle   string
}

type TypeCounts struct {
	Standard   int `json:"standard"`
	RoadAssist int `json:"roadassist"`
	Damaged    int `json:"damaged"`
	PDI        int `json:"pdi"`
}

type BranchStats struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	TotalRecords int      `json:"total_records"`
	StaffCount   int      `json:"staff_count"`
	OnlineCount  int      `json:"online_count"`
	Staff        []string `json:"staff"`
}

type Stats struct {
	Total    int             `json:"total"`
	ByType   TypeCounts      `json:"by_type"`
	Branches []BranchStats   `json:"branches"`
	Recent   []models.Record `json:"recent"`
}

type MyStats struct {
	Total        int        `json:"total"`
	ByType       TypeCounts `json:"by_type"`
	PendingCount int        `json:"pending_count"`
	BranchName   string     `json:"branch_name"`
}

type RecordStore interface {
	CreateRecord(ctx context.Context, input CreateRecordInput) (models.Record, error)
	GetRecord(ctx context.Context, recordID string) (models.Record, error)
	ListRecords(ctx context.Context, input ListRecordsInput) ([]models.Record, error)
	UpdateNote(ctx context.Context, recordID, noteText string) error
	SoftDeleteRecord(ctx context.Context, recordID string) error
	ApproveRecord(ctx context.Context, input ReviewInput) (models.Record, error)
	RejectRecord(ctx context.Context, input ReviewInput) (models.Record, error)
	AppendFile(ctx context.Context, recordID string, item models.FileItem) error
	RemoveFile(ctx context.Context, recordID, fileID string) (models.FileItem, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, input CreateUserInput) (models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	SetOnline(ctx context.Context, userID string, online bool) error
	ListStaff(ctx context.Context, includeApprentices bool) ([]models.User, error)
	ListApprentices(ctx context.Context) ([]models.User, error)
	UpdateStaff(ctx context.Context, input UpdateStaffInput) (models.User, error)
	DeleteStaff(ctx context.Context, userID string) error
	EnsureAdmin(ctx context.Context, username, password, fullName string) error
}

// CreateNotificationInput carries a direct staff-to-creator request,
// such as asking for a missing document or a photo retake.
type CreateNotificationInput struct {
	RecordID      string
	Sender        models.User
	RecipientID   string
	RecipientName string
	Type          string
	Message       string
	CreatedAt     time.Time
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, input CreateNotificationInput) (models.Notification, error)
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]models.Notification, int, error)
	MarkNotificationRead(ctx context.Context, notificationID, recipientID string) error
	MarkAllNotificationsRead(ctx context.Context, recipientID string) error
}

type SettingsStore interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	UpdateSettings(ctx context.Context, update models.Settings) (models.Settings, error)
}

type StatsStore interface {
	GetStats(ctx context.Context) (Stats, error)
	GetMyStats(ctx context.Context, branchCode string) (MyStats, error)
}

type Store interface {
	RecordStore
	UserStore
	NotificationStore
	SettingsStore
	StatsStore
}
