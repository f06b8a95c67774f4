package attendance

import "errors"

// Attendance domain errors
var (
	// Session state conflicts
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNotCheckedIn      = errors.New("you have not checked in today")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")
	ErrInvalidTimestamp  = errors.New("check-out time must not be before check-in time")

	// Evidence errors
	ErrMissingEvidence    = errors.New("attendance selfie is required")
	ErrNoReferencePhoto   = errors.New("no reference photo found for worker")
	ErrFaceMismatch       = errors.New("face verification failed")
	ErrNoFaceDetected     = errors.New("no face detected in the photo, please retry")
	ErrMissingTimestamp   = errors.New("client timestamp is required for offline sync")
	ErrTimestampInFuture  = errors.New("client timestamp must not be in the future")
	ErrForbiddenTarget    = errors.New("not allowed to submit attendance for another worker")
	ErrMissingLocation    = errors.New("location is required")

	// Adjudication errors
	ErrAttendanceNotFound   = errors.New("attendance record not found")
	ErrAttendanceNotPending = errors.New("attendance record is not awaiting approval")
)
