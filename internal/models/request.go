package models

import "time"

// RequestStatus is the review state of an artist verification request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusSuspended RequestStatus = "suspended"
	RequestStatusRemoved   RequestStatus = "removed"
)

// requestTransitions is the directed transition graph. removed is terminal;
// rejected has no path back other than removal.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:   {RequestStatusApproved, RequestStatusRejected},
	RequestStatusApproved:  {RequestStatusSuspended, RequestStatusRemoved},
	RequestStatusSuspended: {RequestStatusApproved, RequestStatusRemoved},
	RequestStatusRejected:  {RequestStatusRemoved},
	RequestStatusRemoved:   {},
}

// CanTransition reports whether the status graph allows moving from one
// request status to another.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Applicant is the profile snapshot captured at submission time.
type Applicant struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Username    string `json:"username,omitempty"`
}

// ArtistRequest is a professional-artist verification application. Requests
// are never hard-deleted; removed is terminal but retained for audit.
type ArtistRequest struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId"`
	Status          RequestStatus     `json:"status"`
	Applicant       Applicant         `json:"applicant"`
	PortfolioImages []string          `json:"portfolioImages,omitempty"`
	Statement       string            `json:"statement,omitempty"`
	Experience      string            `json:"experience,omitempty"`
	SocialLinks     map[string]string `json:"socialLinks,omitempty"`
	SubmittedAt     time.Time         `json:"submittedAt"`
	ReviewedAt      *time.Time        `json:"reviewedAt,omitempty"`
	ReviewedBy      string            `json:"reviewedBy,omitempty"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

// IsReviewed indicates the request has left the pending state.
func (r ArtistRequest) IsReviewed() bool {
	return r.Status != RequestStatusPending
}
