package overtime

import (
	"context"
	"time"
)

// OvertimeRepository defines data access for overtime claims.
type OvertimeRepository interface {
	// Create stores a new claim in pending state.
	Create(ctx context.Context, ot Overtime) (Overtime, error)

	// GetByID retrieves a claim by primary key with user fields joined.
	GetByID(ctx context.Context, id string) (Overtime, error)

	// Update persists a reviewed claim.
	Update(ctx context.Context, ot Overtime) error

	// List retrieves claims matching the filter with pagination, newest first.
	List(ctx context.Context, filter OvertimeFilter) ([]Overtime, int64, error)

	// SumReportableByDay aggregates approved and pending hours per (user, day)
	// over the inclusive day-key range; only rejected claims are excluded.
	// The map key is userID + "|" + day in YYYY-MM-DD form.
	SumReportableByDay(ctx context.Context, start, end time.Time, userID *string) (map[string]float64, error)
}
