package models

import "time"

type Notification struct {
	NotificationID   string    `json:"id"`
	RecordID         string    `json:"record_id"`
	SenderID         string    `json:"sender_id"`
	SenderName       string    `json:"sender_name"`
	RecipientID      string    `json:"recipient_id"`
	RecipientName    string    `json:"recipient_name"`
	NotificationType string    `json:"notification_type"`
	Message          string    `json:"message"`
	IsRead           bool      `json:"is_read"`
	CreatedAt        time.Time `json:"created_at"`
}

const (
	NotifMissingDocument = "missing_document"
	NotifRetakePhoto     = "retake_photo"
	NotifRecordApproved  = "record_approved"
	NotifRecordRejected  = "record_rejected"
	NotifNewRecord       = "new_record"
)
