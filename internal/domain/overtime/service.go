package overtime

import "context"

// OvertimeService defines business logic for overtime claims.
type OvertimeService interface {
	// Create files a new claim; workers file for themselves, supervisors and
	// management may file for any worker.
	Create(ctx context.Context, req CreateOvertimeRequest) (OvertimeResponse, error)

	// Review approves or rejects a claim. Re-reviewing into the same state is
	// idempotent.
	Review(ctx context.Context, req ReviewOvertimeRequest) (OvertimeResponse, error)

	// List retrieves claims; workers see only their own.
	List(ctx context.Context, filter OvertimeFilter) (ListOvertimeResponse, error)
}
