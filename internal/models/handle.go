package models

// Handle maps a username to its owning user id. A nil UserID means the name
// was released and may be claimed again; the document itself is kept so the
// name's history survives.
type Handle struct {
	Username string  `json:"username"`
	UserID   *string `json:"userId"`
}

// IsOwned reports whether the handle currently has an owner.
func (h Handle) IsOwned() bool {
	return h.UserID != nil && *h.UserID != ""
}
