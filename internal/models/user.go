package models

import "time"

type User struct {
	UserID     string     `json:"id"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name"`
	Role       string     `json:"role"`
	BranchCode string     `json:"branch_code,omitempty"`
	JobTitle   string     `json:"job_title,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Email      string     `json:"email,omitempty"`
	IsOnline   bool       `json:"is_online"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

const (
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleApprentice = "apprentice"
)

func ValidRole(value string) bool {
	switch value {
	case RoleAdmin, RoleStaff, RoleApprentice:
		return true
	}
	return false
}
