package attendance

import (
	"fmt"
	"time"
)

type EventKind string

const (
	KindCheckIn  EventKind = "check_in"
	KindCheckOut EventKind = "check_out"
)

type Channel string

const (
	// ChannelLive events are submitted in real time; the server clock is the
	// effective instant.
	ChannelLive Channel = "live"
	// ChannelSync events were captured offline and submitted later; the
	// client-supplied timestamp is the effective instant and the record
	// always lands in the administrator queue as pending.
	ChannelSync Channel = "offline_sync"
)

// Event is a fully resolved attendance event: identity and day bucketing have
// already happened at intake, EffectiveAt carries client time for sync events
// and server time for live events.
type Event struct {
	Kind        EventKind
	Channel     Channel
	ActorID     string
	ActorName   string
	WorkerID    string
	EffectiveAt time.Time
	Location    *Location
	PhotoURL    string
}

// ApplyEvent advances the per-day session state machine. rec is the record
// under the store's per-(worker, day) lock; a record with an empty ID is a
// fresh one about to be created. Transition legality is decided by arrival
// order here, while the stored timestamps reflect the event's effective time.
//
// Policy decisions baked in:
//   - one finalized session per calendar day: a live check-in against an open
//     or closed present session fails with ErrAlreadyCheckedIn;
//   - a live check-in against a pending record claims it as present (the
//     audit note records the overwrite), matching supervisor-correction
//     behavior;
//   - a rejected day accepts resubmission, but only back into pending;
//   - sync events never auto-resolve: whatever the current state, the record
//     becomes pending.
func ApplyEvent(rec *Attendance, ev Event) error {
	switch ev.Channel {
	case ChannelSync:
		return applySync(rec, ev)
	case ChannelLive:
		switch ev.Kind {
		case KindCheckIn:
			return applyLiveCheckIn(rec, ev)
		case KindCheckOut:
			return applyLiveCheckOut(rec, ev)
		}
	}
	return fmt.Errorf("unsupported attendance event %s/%s", ev.Channel, ev.Kind)
}

func applyLiveCheckIn(rec *Attendance, ev Event) error {
	switch {
	case rec.ID == "" || rec.Status == StatusAbsent:
		// Fresh day.
	case rec.Status == StatusPresent:
		return ErrAlreadyCheckedIn
	case rec.Status == StatusRejected:
		// Resubmission after rejection goes back through adjudication.
		setCheckIn(rec, ev, StatusPending)
		rec.AppendNote(ev.EffectiveAt, fmt.Sprintf("re-check-in after rejection by %s (live)", ev.ActorName))
		return nil
	}

	prior := rec.Status
	setCheckIn(rec, ev, StatusPresent)
	note := fmt.Sprintf("check-in by %s (live)", ev.ActorName)
	if prior == StatusPending || prior == StatusLeave {
		note = fmt.Sprintf("check-in by %s (live), overwrote %s record", ev.ActorName, prior)
	}
	rec.AppendNote(ev.EffectiveAt, note)
	return nil
}

func applyLiveCheckOut(rec *Attendance, ev Event) error {
	if rec.ID == "" || rec.Status != StatusPresent || rec.CheckInTime == nil {
		return ErrNotCheckedIn
	}
	if rec.CheckOutTime != nil {
		return ErrAlreadyCheckedOut
	}
	if ev.EffectiveAt.Before(*rec.CheckInTime) {
		return ErrInvalidTimestamp
	}

	setCheckOut(rec, ev)
	rec.AppendNote(ev.EffectiveAt, fmt.Sprintf("check-out by %s (live)", ev.ActorName))
	return nil
}

func applySync(rec *Attendance, ev Event) error {
	prior := rec.Status
	switch ev.Kind {
	case KindCheckIn:
		setCheckIn(rec, ev, StatusPending)
	case KindCheckOut:
		if rec.CheckInTime != nil && ev.EffectiveAt.Before(*rec.CheckInTime) {
			return ErrInvalidTimestamp
		}
		setCheckOut(rec, ev)
		rec.Status = StatusPending
	default:
		return fmt.Errorf("unsupported attendance event %s/%s", ev.Channel, ev.Kind)
	}

	note := fmt.Sprintf("offline-sync %s by %s, awaiting approval", ev.Kind, ev.ActorName)
	if rec.ID != "" && prior != "" && prior != StatusPending {
		note += fmt.Sprintf(" (was %s)", prior)
	}
	rec.AppendNote(ev.EffectiveAt, note)
	return nil
}

func setCheckIn(rec *Attendance, ev Event, status Status) {
	at := ev.EffectiveAt
	rec.Status = status
	rec.CheckInTime = &at
	rec.CheckInLocation = ev.Location
	rec.CheckInPhotoURL = &ev.PhotoURL
	// A fresh check-in starts a new session cycle.
	rec.CheckOutTime = nil
	rec.CheckOutLocation = nil
	rec.CheckOutPhotoURL = nil
	rec.LateMinutes = nil
	rec.RejectionReason = nil
}

func setCheckOut(rec *Attendance, ev Event) {
	at := ev.EffectiveAt
	rec.CheckOutTime = &at
	rec.CheckOutLocation = ev.Location
	rec.CheckOutPhotoURL = &ev.PhotoURL
}

// Approve moves a pending record to present. Only pending records can be
// adjudicated.
func Approve(rec *Attendance, adminID string, at time.Time) error {
	if rec.Status != StatusPending {
		return ErrAttendanceNotPending
	}
	rec.Status = StatusPresent
	rec.ApprovedBy = &adminID
	rec.ApprovedAt = &at
	rec.RejectionReason = nil
	rec.AppendNote(at, fmt.Sprintf("approved by admin %s", adminID))
	return nil
}

// Reject moves a pending record to rejected with a reason. The worker may
// still resubmit for the day; resubmission re-enters the pending queue.
func Reject(rec *Attendance, adminID, reason string, at time.Time) error {
	if rec.Status != StatusPending {
		return ErrAttendanceNotPending
	}
	rec.Status = StatusRejected
	rec.ApprovedBy = &adminID
	rec.ApprovedAt = &at
	rec.RejectionReason = &reason
	rec.AppendNote(at, fmt.Sprintf("rejected by admin %s: %s", adminID, reason))
	return nil
}
