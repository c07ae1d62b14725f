package domain

import "time"

type Invite struct {
	ID          int64
	Code        string
	Link        string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Used        bool
	RequesterID int64
}

type InviteStatus string

const (
	InviteStatusActive  InviteStatus = "Active"
	InviteStatusExpired InviteStatus = "Expired"
	InviteStatusUsed    InviteStatus = "Used"
)

// Status derives the invite status at now. A used invite reports Used even
// after it has expired.
func (i Invite) Status(now time.Time) InviteStatus {
	switch {
	case i.Used:
		return InviteStatusUsed
	case i.ExpiresAt.After(now):
		return InviteStatusActive
	default:
		return InviteStatusExpired
	}
}
