package attendance

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(h, min int) time.Time {
	return time.Date(2026, time.March, 2, h, min, 0, 0, time.UTC)
}

func liveCheckIn(t time.Time) Event {
	return Event{
		Kind:        KindCheckIn,
		Channel:     ChannelLive,
		ActorID:     "u-1",
		ActorName:   "Asha",
		WorkerID:    "u-1",
		EffectiveAt: t,
		Location:    &Location{Latitude: 12.97, Longitude: 77.59},
		PhotoURL:    "uploads/in.jpg",
	}
}

func liveCheckOut(t time.Time) Event {
	ev := liveCheckIn(t)
	ev.Kind = KindCheckOut
	ev.PhotoURL = "uploads/out.jpg"
	return ev
}

func TestApplyEventLiveCheckInFreshDay(t *testing.T) {
	rec := &Attendance{UserID: "u-1", Date: day(2026, time.March, 2)}

	err := ApplyEvent(rec, liveCheckIn(at(9, 0)))
	require.NoError(t, err)

	assert.Equal(t, StatusPresent, rec.Status)
	require.NotNil(t, rec.CheckInTime)
	assert.True(t, rec.CheckInTime.Equal(at(9, 0)))
	assert.Nil(t, rec.CheckOutTime)
	assert.True(t, rec.HasOpenSession())
	assert.Contains(t, rec.Notes, "check-in by Asha (live)")
}

func TestApplyEventLiveDoubleCheckIn(t *testing.T) {
	rec := &Attendance{UserID: "u-1", Date: day(2026, time.March, 2)}
	require.NoError(t, ApplyEvent(rec, liveCheckIn(at(9, 0))))
	rec.ID = "att-1"

	err := ApplyEvent(rec, liveCheckIn(at(9, 5)))
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestApplyEventLiveCheckInAfterFinalizedSession(t *testing.T) {
	rec := &Attendance{ID: "att-1", UserID: "u-1", Date: day(2026, time.March, 2)}
	require.NoError(t, ApplyEvent(rec, liveCheckIn(at(9, 0))))
	require.NoError(t, ApplyEvent(rec, liveCheckOut(at(17, 0))))

	// One finalized session per day: a second check-in is refused.
	err := ApplyEvent(rec, liveCheckIn(at(18, 0)))
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestApplyEventLiveCheckOutWithoutCheckIn(t *testing.T) {
	rec := &Attendance{UserID: "u-1", Date: day(2026, time.March, 2)}

	err := ApplyEvent(rec, liveCheckOut(at(17, 0)))
	assert.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestApplyEventLiveDoubleCheckOut(t *testing.T) {
	rec := &Attendance{ID: "att-1", UserID: "u-1", Date: day(2026, time.March, 2)}
	require.NoError(t, ApplyEvent(rec, liveCheckIn(at(9, 0))))
	require.NoError(t, ApplyEvent(rec, liveCheckOut(at(17, 0))))

	err := ApplyEvent(rec, liveCheckOut(at(17, 30)))
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
}

func TestApplyEventCheckOutBeforeCheckIn(t *testing.T) {
	rec := &Attendance{ID: "att-1", UserID: "u-1", Date: day(2026, time.March, 2)}
	require.NoError(t, ApplyEvent(rec, liveCheckIn(at(9, 0))))

	err := ApplyEvent(rec, liveCheckOut(at(8, 0)))
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
	assert.Nil(t, rec.CheckOutTime)
}

func TestApplyEventLiveCheckInClaimsPendingRecord(t *testing.T) {
	rec := &Attendance{
		ID:     "att-1",
		UserID: "u-1",
		Date:   day(2026, time.March, 2),
		Status: StatusPending,
	}

	err := ApplyEvent(rec, liveCheckIn(at(9, 0)))
	require.NoError(t, err)

	assert.Equal(t, StatusPresent, rec.Status)
	assert.Contains(t, rec.Notes, "overwrote pending record")
}

func TestApplyEventLiveCheckInAfterRejectionReentersPending(t *testing.T) {
	reason := "blurry photo"
	rec := &Attendance{
		ID:              "att-1",
		UserID:          "u-1",
		Date:            day(2026, time.March, 2),
		Status:          StatusRejected,
		RejectionReason: &reason,
	}

	err := ApplyEvent(rec, liveCheckIn(at(10, 0)))
	require.NoError(t, err)

	assert.Equal(t, StatusPending, rec.Status)
	assert.Nil(t, rec.RejectionReason)
	assert.Contains(t, rec.Notes, "re-check-in after rejection")
}

func TestApplyEventSyncCheckInAlwaysPending(t *testing.T) {
	rec := &Attendance{UserID: "u-1", Date: day(2026, time.March, 2)}
	ev := liveCheckIn(at(9, 0))
	ev.Channel = ChannelSync

	err := ApplyEvent(rec, ev)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, rec.Status)
	assert.Contains(t, rec.Notes, "offline-sync check_in")
	assert.Contains(t, rec.Notes, "awaiting approval")
}

func TestApplyEventSyncCheckOutAlwaysPending(t *testing.T) {
	rec := &Attendance{ID: "att-1", UserID: "u-1", Date: day(2026, time.March, 2)}
	require.NoError(t, ApplyEvent(rec, liveCheckIn(at(9, 0))))

	// Even on a live present session, a sync check-out demotes to pending.
	ev := liveCheckOut(at(17, 0))
	ev.Channel = ChannelSync
	require.NoError(t, ApplyEvent(rec, ev))

	assert.Equal(t, StatusPending, rec.Status)
	require.NotNil(t, rec.CheckOutTime)
	assert.True(t, rec.CheckOutTime.Equal(at(17, 0)))
	assert.Contains(t, rec.Notes, "(was present)")
}

func TestApplyEventSyncCheckOutBeforeCheckIn(t *testing.T) {
	rec := &Attendance{ID: "att-1", UserID: "u-1", Date: day(2026, time.March, 2)}
	require.NoError(t, ApplyEvent(rec, liveCheckIn(at(9, 0))))

	ev := liveCheckOut(at(8, 0))
	ev.Channel = ChannelSync
	err := ApplyEvent(rec, ev)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestApplyEventUnknownKind(t *testing.T) {
	rec := &Attendance{UserID: "u-1", Date: day(2026, time.March, 2)}
	ev := Event{Kind: "nap", Channel: ChannelLive, EffectiveAt: at(13, 0)}

	err := ApplyEvent(rec, ev)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAlreadyCheckedIn))
}

func TestApproveOnlyPending(t *testing.T) {
	rec := &Attendance{ID: "att-1", UserID: "u-1", Status: StatusPending}

	require.NoError(t, Approve(rec, "admin-1", at(12, 0)))
	assert.Equal(t, StatusPresent, rec.Status)
	require.NotNil(t, rec.ApprovedBy)
	assert.Equal(t, "admin-1", *rec.ApprovedBy)

	// Already adjudicated; a second approve is refused.
	err := Approve(rec, "admin-2", at(12, 5))
	assert.ErrorIs(t, err, ErrAttendanceNotPending)
}

func TestRejectRecordsReason(t *testing.T) {
	rec := &Attendance{ID: "att-1", UserID: "u-1", Status: StatusPending}

	require.NoError(t, Reject(rec, "admin-1", "photo mismatch", at(12, 0)))
	assert.Equal(t, StatusRejected, rec.Status)
	require.NotNil(t, rec.RejectionReason)
	assert.Equal(t, "photo mismatch", *rec.RejectionReason)

	err := Reject(rec, "admin-1", "again", at(12, 5))
	assert.ErrorIs(t, err, ErrAttendanceNotPending)
}

func TestAppendNoteKeepsHistoryInOrder(t *testing.T) {
	rec := &Attendance{}
	rec.AppendNote(at(9, 0), "first")
	rec.AppendNote(at(10, 0), "second")

	lines := strings.Split(rec.Notes, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}
