package models

import "time"

// InviteStatus is the lifecycle state of an artist onboarding invite.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusRedeemed InviteStatus = "redeemed"
	InviteStatusRevoked  InviteStatus = "revoked"
	InviteStatusExpired  InviteStatus = "expired"
	InviteStatusArchived InviteStatus = "archived"
)

// ArtistInvite is an onboarding token sent to a prospective artist. The token
// doubles as the document id and as the bearer credential embedded in the
// onboarding link. Invites are archived, never hard-deleted.
type ArtistInvite struct {
	Token          string       `json:"token"`
	Email          string       `json:"email"`
	Name           string       `json:"name,omitempty"`
	Message        string       `json:"message,omitempty"`
	Status         InviteStatus `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
	CreatedBy      string       `json:"createdBy,omitempty"`
	LastSentAt     *time.Time   `json:"lastSentAt,omitempty"`
	RedeemedAt     *time.Time   `json:"redeemedAt,omitempty"`
	RedeemedBy     string       `json:"redeemedBy,omitempty"`
	LastAccessedAt *time.Time   `json:"lastAccessedAt,omitempty"`
	RevokedAt      *time.Time   `json:"revokedAt,omitempty"`
	ArchivedAt     *time.Time   `json:"archivedAt,omitempty"`
	LastError      string       `json:"lastError,omitempty"`
}

// IsRedeemable reports whether the invited party can still use the token.
func (i ArtistInvite) IsRedeemable() bool {
	return i.Status == InviteStatusPending
}

// IsExpired reports whether a pending invite has outlived the given TTL,
// counting from the most recent send.
func (i ArtistInvite) IsExpired(now time.Time, ttl time.Duration) bool {
	if i.Status != InviteStatusPending || ttl <= 0 {
		return false
	}
	ref := i.CreatedAt
	if i.LastSentAt != nil && i.LastSentAt.After(ref) {
		ref = *i.LastSentAt
	}
	return now.After(ref.Add(ttl))
}
