package attendance

import (
	"context"
	"time"
)

// Mutator applies a transition to the record for one (user, day) pair. A
// fresh record (empty ID) is passed when the day has no row yet; returning an
// error aborts the upsert and surfaces unchanged.
type Mutator func(rec *Attendance) error

// AttendanceRepository defines data access for attendance records.
type AttendanceRepository interface {
	// UpsertForDay loads (or initializes) the record for the user and day,
	// applies mutate, and persists the result. The whole sequence runs under
	// an exclusive per-(user, day) lock so concurrent events for the same day
	// serialize and exactly one writer wins each race. Every mutation of a
	// record, intake and adjudication alike, goes through this path.
	UpsertForDay(ctx context.Context, userID string, day time.Time, mutate Mutator) (Attendance, error)

	// GetByID retrieves a record by primary key with user fields joined.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetForDay retrieves the record for one user on one day key.
	GetForDay(ctx context.Context, userID string, day time.Time) (*Attendance, error)

	// FindRange retrieves all records with day keys in [start, end], user
	// fields joined, ordered by date then user name.
	FindRange(ctx context.Context, start, end time.Time, userID *string) ([]Attendance, error)

	// List retrieves records matching the filter with pagination.
	List(ctx context.Context, filter HistoryFilter) ([]Attendance, int64, error)

	// ListPending retrieves records awaiting adjudication, oldest first.
	ListPending(ctx context.Context, page, limit int) ([]Attendance, int64, error)
}
