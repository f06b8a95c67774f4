package attendance

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/re-attendance/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE EVENT DTOs
// ========================================

// CheckInRequest is a live check-in. TargetUserID is only honored for
// supervisor and management actors; workers always act on themselves.
type CheckInRequest struct {
	TargetUserID string                `json:"target_user_id"`
	Location     *Location             `json:"location"`
	File         multipart.File        `json:"-"`
	FileHeader   *multipart.FileHeader `json:"-"`
	PhotoURL     *string               `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateLocation(r.Location)...)
	errs = append(errs, validatePhoto(r.FileHeader)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutRequest struct {
	TargetUserID string                `json:"target_user_id"`
	Location     *Location             `json:"location"`
	File         multipart.File        `json:"-"`
	FileHeader   *multipart.FileHeader `json:"-"`
	PhotoURL     *string               `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateLocation(r.Location)...)
	errs = append(errs, validatePhoto(r.FileHeader)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// SyncCheckInRequest is an offline-captured check-in replayed later. The
// client timestamp is mandatory and becomes the effective event time.
type SyncCheckInRequest struct {
	TargetUserID string                `json:"target_user_id"`
	Timestamp    string                `json:"timestamp"` // RFC3339
	Location     *Location             `json:"location"`
	File         multipart.File        `json:"-"`
	FileHeader   *multipart.FileHeader `json:"-"`
	PhotoURL     *string               `json:"-"`
}

func (r *SyncCheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateTimestamp(r.Timestamp)...)
	errs = append(errs, validateLocation(r.Location)...)
	errs = append(errs, validatePhoto(r.FileHeader)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SyncCheckOutRequest struct {
	TargetUserID string                `json:"target_user_id"`
	Timestamp    string                `json:"timestamp"` // RFC3339
	Location     *Location             `json:"location"`
	File         multipart.File        `json:"-"`
	FileHeader   *multipart.FileHeader `json:"-"`
	PhotoURL     *string               `json:"-"`
}

func (r *SyncCheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateTimestamp(r.Timestamp)...)
	errs = append(errs, validateLocation(r.Location)...)
	errs = append(errs, validatePhoto(r.FileHeader)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MarkWorkerRequest lets a supervisor or management user record leave for a
// worker without a device event. Present and absent are never set this way:
// present requires photo evidence through the check-in path, and absent is
// synthesized at report time rather than written.
type MarkWorkerRequest struct {
	UserID string  `json:"user_id"`
	Date   string  `json:"date"` // YYYY-MM-DD, defaults to today
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

func (r *MarkWorkerRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if r.Date != "" {
		if _, valid := validator.IsValidDate(r.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if strings.ToLower(r.Status) != string(StatusLeave) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be 'leave'",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ApproveRequest approves a pending record.
type ApproveRequest struct {
	ID    string  `json:"-"`
	Notes *string `json:"notes,omitempty"`
}

// RejectRequest rejects a pending record with a mandatory reason.
type RejectRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "rejection reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// QUERY DTOs
// ========================================

type HistoryFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !IsValidStatus(*f.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, absent, leave, pending, rejected",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSES
// ========================================

type AttendanceResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	UserName         *string   `json:"user_name,omitempty"`
	UserCode         *string   `json:"user_code,omitempty"`
	UserRole         *string   `json:"user_role,omitempty"`
	UserDesignation  *string   `json:"user_designation,omitempty"`
	Date             string    `json:"date"`
	Status           string    `json:"status"`
	CheckInTime      *string   `json:"check_in_time,omitempty"`
	CheckOutTime     *string   `json:"check_out_time,omitempty"`
	CheckInLocation  *Location `json:"check_in_location,omitempty"`
	CheckOutLocation *Location `json:"check_out_location,omitempty"`
	CheckInPhotoURL  *string   `json:"check_in_photo_url,omitempty"`
	CheckOutPhotoURL *string   `json:"check_out_photo_url,omitempty"`
	WorkingHours     *float64  `json:"working_hours,omitempty"`
	LateMinutes      *int      `json:"late_minutes,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	RejectionReason  *string   `json:"rejection_reason,omitempty"`
	CreatedAt        string    `json:"created_at"`
	UpdatedAt        string    `json:"updated_at"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// ToResponse maps the entity to its API shape. Date and times are rendered in
// RFC3339 / YYYY-MM-DD; working hours are derived when both session ends exist.
func ToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:               a.ID,
		UserID:           a.UserID,
		UserName:         a.UserName,
		UserCode:         a.UserCode,
		UserRole:         a.UserRole,
		UserDesignation:  a.UserDesignation,
		Date:             a.Date.Format("2006-01-02"),
		Status:           string(a.Status),
		CheckInLocation:  a.CheckInLocation,
		CheckOutLocation: a.CheckOutLocation,
		CheckInPhotoURL:  a.CheckInPhotoURL,
		CheckOutPhotoURL: a.CheckOutPhotoURL,
		LateMinutes:      a.LateMinutes,
		Notes:            a.Notes,
		RejectionReason:  a.RejectionReason,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        a.UpdatedAt.Format(time.RFC3339),
	}

	if a.CheckInTime != nil {
		s := a.CheckInTime.UTC().Format(time.RFC3339)
		resp.CheckInTime = &s
	}
	if a.CheckOutTime != nil {
		s := a.CheckOutTime.UTC().Format(time.RFC3339)
		resp.CheckOutTime = &s
	}
	if a.CheckInTime != nil && a.CheckOutTime != nil {
		hours := a.CheckOutTime.Sub(*a.CheckInTime).Hours()
		resp.WorkingHours = &hours
	}

	return resp
}

func validateLocation(loc *Location) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if loc == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location is required",
		})
		return errs
	}

	if loc.Latitude < -90 || loc.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "location.latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if loc.Longitude < -180 || loc.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "location.longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	return errs
}

func validatePhoto(header *multipart.FileHeader) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if header == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "attendance selfie is required",
		})
		return errs
	}

	filename := header.Filename
	idx := strings.LastIndex(filename, ".")
	ext := ""
	if idx >= 0 {
		ext = strings.ToLower(filename[idx:])
	}
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "invalid file type: only jpg, jpeg, png allowed",
		})
	} else if header.Size > 10<<20 { // 10MB
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "attendance selfie size must not exceed 10MB",
		})
	}

	return errs
}

func validateTimestamp(ts string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(ts) {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp is required for offline sync",
		})
		return errs
	}

	if _, valid := validator.IsValidDateTime(ts); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp must be a valid RFC3339 datetime",
		})
	}

	return errs
}
