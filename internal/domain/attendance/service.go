package attendance

import "context"

// AttendanceService defines business logic for attendance events and
// adjudication. The acting user is resolved from the request context claims.
type AttendanceService interface {
	// CheckIn processes a live check-in at server time.
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut processes a live check-out at server time.
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// CheckInPending replays an offline-captured check-in; the record always
	// lands in the pending queue.
	CheckInPending(ctx context.Context, req SyncCheckInRequest) (AttendanceResponse, error)

	// CheckOutPending replays an offline-captured check-out.
	CheckOutPending(ctx context.Context, req SyncCheckOutRequest) (AttendanceResponse, error)

	// MarkWorker records a status for a worker on behalf of a supervisor or
	// management user, without a device event.
	MarkWorker(ctx context.Context, req MarkWorkerRequest) (AttendanceResponse, error)

	// GetAttendance retrieves a single record by ID.
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// History retrieves records matching the filter. Workers are constrained
	// to their own history regardless of filter contents.
	History(ctx context.Context, filter HistoryFilter) (ListAttendanceResponse, error)

	// ListPending retrieves records awaiting adjudication.
	ListPending(ctx context.Context, page, limit int) (ListAttendanceResponse, error)

	// Approve resolves a pending record as present.
	Approve(ctx context.Context, req ApproveRequest) (AttendanceResponse, error)

	// Reject resolves a pending record as rejected with a reason.
	Reject(ctx context.Context, req RejectRequest) (AttendanceResponse, error)
}
