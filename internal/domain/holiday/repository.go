package holiday

import (
	"context"
	"time"
)

// HolidayRepository defines data access for the holiday calendar.
type HolidayRepository interface {
	// Create stores a holiday; a duplicate day fails with ErrHolidayExists.
	Create(ctx context.Context, h Holiday) (Holiday, error)

	// Delete removes a holiday by ID.
	Delete(ctx context.Context, id string) error

	// List retrieves holidays matching the filter, ascending by date.
	List(ctx context.Context, filter HolidayFilter) ([]Holiday, error)

	// DaysInRange retrieves the set of holiday day keys in [start, end]. The
	// map key is the day in YYYY-MM-DD form.
	DaysInRange(ctx context.Context, start, end time.Time) (map[string]Holiday, error)
}
