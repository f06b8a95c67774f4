package response

import (
	"errors"
	"net/http"

	"github.com/re-attendance/attendance-backend-go/internal/domain/attendance"
	"github.com/re-attendance/attendance-backend-go/internal/domain/auth"
	"github.com/re-attendance/attendance-backend-go/internal/domain/holiday"
	"github.com/re-attendance/attendance-backend-go/internal/domain/overtime"
	"github.com/re-attendance/attendance-backend-go/internal/domain/report"
	"github.com/re-attendance/attendance-backend-go/internal/domain/user"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrUserInactive), errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "Account is deactivated")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Attendance session conflicts
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrAttendanceNotPending):
		Conflict(w, err.Error())

	// Attendance evidence and input errors
	case errors.Is(err, attendance.ErrInvalidTimestamp),
		errors.Is(err, attendance.ErrMissingEvidence),
		errors.Is(err, attendance.ErrNoReferencePhoto),
		errors.Is(err, attendance.ErrNoFaceDetected),
		errors.Is(err, attendance.ErrMissingTimestamp),
		errors.Is(err, attendance.ErrTimestampInFuture),
		errors.Is(err, attendance.ErrMissingLocation):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, attendance.ErrFaceMismatch):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrForbiddenTarget):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Overtime domain errors
	case errors.Is(err, overtime.ErrOvertimeNotFound):
		NotFound(w, "Overtime claim not found")
	case errors.Is(err, overtime.ErrInvalidHours):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, overtime.ErrForbiddenOvertime):
		Forbidden(w, err.Error())

	// Holiday domain errors
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, holiday.ErrHolidayExists):
		Conflict(w, err.Error())

	// Report domain errors
	case errors.Is(err, report.ErrForbiddenScope):
		Forbidden(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
