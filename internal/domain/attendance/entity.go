package attendance

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPresent  Status = "present"
	StatusAbsent   Status = "absent" // Synthesized at report time, never persisted by intake
	StatusLeave    Status = "leave"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
)

// Attendance is one worker's record for one business day. The (UserID, Date)
// pair is the logical key; Date is always a day key from the calendar package.
type Attendance struct {
	ID               string
	UserID           string
	Date             time.Time
	Status           Status
	CheckInTime      *time.Time
	CheckOutTime     *time.Time
	CheckInLocation  *Location
	CheckOutLocation *Location
	CheckInPhotoURL  *string
	CheckOutPhotoURL *string
	LateMinutes      *int
	Notes            string
	ApprovedBy       *string
	ApprovedAt       *time.Time
	RejectionReason  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined from the user directory for responses and reports.
	UserName        *string
	UserCode        *string
	UserRole        *string
	UserDesignation *string
}

// HasOpenSession reports whether the record is a present check-in with no
// check-out yet.
func (a *Attendance) HasOpenSession() bool {
	return a.Status == StatusPresent && a.CheckInTime != nil && a.CheckOutTime == nil
}

// AppendNote adds one line to the append-only audit trail. Every mutation
// must leave a note so provenance is never lost.
func (a *Attendance) AppendNote(at time.Time, msg string) {
	line := fmt.Sprintf("[%s] %s", at.UTC().Format(time.RFC3339), msg)
	if a.Notes == "" {
		a.Notes = line
		return
	}
	a.Notes += "\n" + line
}

// IsValidStatus reports whether s names a known attendance status.
func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusPresent, StatusAbsent, StatusLeave, StatusPending, StatusRejected:
		return true
	}
	return false
}
