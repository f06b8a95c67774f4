package holiday

import "context"

// HolidayService defines business logic for the holiday calendar.
type HolidayService interface {
	// Create registers a non-working day. Admin only.
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)

	// Delete removes a holiday. Admin only.
	Delete(ctx context.Context, id string) error

	// List retrieves holidays, optionally scoped by year, month, or type.
	List(ctx context.Context, filter HolidayFilter) ([]HolidayResponse, error)
}
