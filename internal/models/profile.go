package models

import "time"

// UserProfile is the platform identity a verification request refers to.
// It is created independently of any request and mutated by the verification
// lifecycle as a side effect of every status transition.
type UserProfile struct {
	UserID         string     `json:"userId"`
	IsProfessional bool       `json:"isProfessional"`
	IsVerified     bool       `json:"isVerified"`
	IsActive       bool       `json:"isActive"`
	SuspendedAt    *time.Time `json:"suspendedAt,omitempty"`
	SuspendedBy    string     `json:"suspendedBy,omitempty"`
	Username       string     `json:"username,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
