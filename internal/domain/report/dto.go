package report

import (
	"fmt"
	"time"

	"github.com/re-attendance/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// DAILY REPORT
// ========================================

// DailyReportRequest selects an inclusive day window. Both bounds default to
// today; a single-day report is start_date == end_date.
type DailyReportRequest struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD, defaults to today
	EndDate   string `json:"end_date"`   // YYYY-MM-DD, defaults to start_date
}

// maxDailyRangeDays bounds one report window to a quarter.
const maxDailyRangeDays = 92

func (r *DailyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startValid := time.Time{}, true
	if r.StartDate != "" {
		if start, startValid = validator.IsValidDate(r.StartDate); !startValid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	end, endValid := time.Time{}, true
	if r.EndDate != "" {
		if end, endValid = validator.IsValidDate(r.EndDate); !endValid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.StartDate != "" && r.EndDate != "" && startValid && endValid {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		} else if end.Sub(start) > maxDailyRangeDays*24*time.Hour {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: fmt.Sprintf("date range must not exceed %d days", maxDailyRangeDays),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DailyReport is a window of per-day breakdowns, most recent day first.
type DailyReport struct {
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	GeneratedAt string           `json:"generated_at"`
	Days        []DailyReportDay `json:"days"`
}

// DailyReportDay is one calendar day of the window with a row per worker in
// scope, absence synthesized for workers with no record.
type DailyReportDay struct {
	Date        string           `json:"date"`
	IsHoliday   bool             `json:"is_holiday"`
	HolidayName *string          `json:"holiday_name,omitempty"`
	Workers     []DailyReportRow `json:"workers"`
}

// DailyReportRow is one worker's day. Rows are ordered by role priority
// (management, supervisor, worker) then name.
type DailyReportRow struct {
	UserID        string   `json:"user_id"`
	UserCode      string   `json:"user_code"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Designation   *string  `json:"designation,omitempty"`
	Status        string   `json:"status"`
	CheckInTime   *string  `json:"check_in_time,omitempty"`
	CheckOutTime  *string  `json:"check_out_time,omitempty"`
	WorkingHours  *float64 `json:"working_hours,omitempty"`
	LateMinutes   int      `json:"late_minutes"`
	OvertimeHours float64  `json:"overtime_hours"`
}

// ========================================
// MONTHLY REPORT
// ========================================

type MonthlyReportRequest struct {
	Month  int     `json:"month"`
	Year   int     `json:"year"`
	UserID *string `json:"user_id,omitempty"`
}

func (r *MonthlyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := time.Now().Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2020 and %d", currentYear+1),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MonthlyReport covers one calendar month. For an in-progress month,
// WorkingDays and HolidayDays count only days that have already happened, so
// each worker's day ledger always balances against WorkingDays.
type MonthlyReport struct {
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	WorkingDays int    `json:"working_days"`
	HolidayDays int    `json:"holiday_days"`
	GeneratedAt string `json:"generated_at"`

	Workers []MonthlyWorkerSummary `json:"workers"`
}

// MonthlyWorkerSummary aggregates one worker's month. PresentDays includes
// late days; PresentDays + AbsentDays + LeaveDays + PendingDays equals the
// report's WorkingDays for every worker.
type MonthlyWorkerSummary struct {
	UserID      string  `json:"user_id"`
	UserCode    string  `json:"user_code"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Designation *string `json:"designation,omitempty"`

	PresentDays        int     `json:"present_days"`
	AbsentDays         int     `json:"absent_days"`
	LeaveDays          int     `json:"leave_days"`
	LateDays           int     `json:"late_days"`
	PendingDays        int     `json:"pending_days"`
	TotalWorkHours     float64 `json:"total_work_hours"`
	TotalLateMinutes   int     `json:"total_late_minutes"`
	TotalOvertimeHours float64 `json:"total_overtime_hours"`
}

// ========================================
// TODAY SUMMARY
// ========================================

// TodaySummary is the live headcount dashboard for the current day.
type TodaySummary struct {
	Date        string  `json:"date"`
	IsHoliday   bool    `json:"is_holiday"`
	HolidayName *string `json:"holiday_name,omitempty"`

	TotalWorkers int `json:"total_workers"`
	Present      int `json:"present"`
	Absent       int `json:"absent"`
	Leave        int `json:"leave"`
	Pending      int `json:"pending"`
	Late         int `json:"late"`
}
