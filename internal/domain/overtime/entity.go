package overtime

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Overtime is one claim for extra hours on one business day. Multiple claims
// per day are allowed; approved and pending claims count toward report
// totals, rejected ones do not.
type Overtime struct {
	ID         string
	UserID     string
	Date       time.Time
	Hours      float64
	Reason     string
	Status     Status
	ReviewedBy *string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined from the user directory.
	UserName *string
	UserCode *string
}

// IsValidStatus reports whether s names a known overtime status.
func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}
