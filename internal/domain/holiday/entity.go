package holiday

import "time"

type Type string

const (
	TypeNational Type = "national"
	TypeCompany  Type = "company"
)

// Holiday is one non-working calendar day. Date is a day key; at most one
// holiday row exists per day.
type Holiday struct {
	ID        string
	Name      string
	Date      time.Time
	Type      Type
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func IsValidType(s string) bool {
	switch Type(s) {
	case TypeNational, TypeCompany:
		return true
	}
	return false
}
