package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/sync/errgroup"

	"github.com/re-attendance/attendance-backend-go/internal/domain/attendance"
	"github.com/re-attendance/attendance-backend-go/internal/domain/holiday"
	"github.com/re-attendance/attendance-backend-go/internal/domain/overtime"
	"github.com/re-attendance/attendance-backend-go/internal/domain/report"
	"github.com/re-attendance/attendance-backend-go/internal/domain/user"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/calendar"
)

// statusHoliday is a presentation-only status for workers with no record on
// a holiday. It never persists.
const statusHoliday = "holiday"

type ReportServiceImpl struct {
	attendance.AttendanceRepository
	user.UserRepository
	holiday.HolidayRepository
	overtime.OvertimeRepository
	cal *calendar.Calendar
	now func() time.Time
}

func NewReportService(
	attRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	holRepo holiday.HolidayRepository,
	otRepo overtime.OvertimeRepository,
	cal *calendar.Calendar,
) *ReportServiceImpl {
	return &ReportServiceImpl{
		AttendanceRepository: attRepo,
		UserRepository:       userRepo,
		HolidayRepository:    holRepo,
		OvertimeRepository:   otRepo,
		cal:                  cal,
		now:                  time.Now,
	}
}

type actor struct {
	ID   string
	Role user.Role
}

func actorFromContext(ctx context.Context) (actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return actor{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return actor{}, fmt.Errorf("user_id claim is missing or invalid")
	}

	roleStr, _ := claims["role"].(string)
	return actor{ID: id, Role: user.Role(roleStr)}, nil
}

// inScope decides whether the actor may see u in a report. Management and
// admin see everyone; supervisors and workers see only themselves.
func inScope(act actor, u user.User) bool {
	switch act.Role {
	case user.RoleManagement, user.RoleAdmin:
		return true
	default:
		return u.ID == act.ID
	}
}

type rangeData struct {
	users     []user.User
	records   []attendance.Attendance
	holidays  map[string]holiday.Holiday
	overtimes map[string]float64 // userID|YYYY-MM-DD -> reportable hours
}

// loadRange fans out the four reads a report needs.
func (s *ReportServiceImpl) loadRange(ctx context.Context, start, end time.Time, userID *string) (rangeData, error) {
	var data rangeData

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.users, err = s.UserRepository.ListActive(gCtx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		data.records, err = s.AttendanceRepository.FindRange(gCtx, start, end, userID)
		return err
	})
	g.Go(func() error {
		var err error
		data.holidays, err = s.HolidayRepository.DaysInRange(gCtx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		data.overtimes, err = s.OvertimeRepository.SumReportableByDay(gCtx, start, end, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return rangeData{}, err
	}
	return data, nil
}

// userDayKey matches the map key shape the overtime aggregate uses.
func userDayKey(userID string, day time.Time) string {
	return userID + "|" + day.Format("2006-01-02")
}

// Daily implements report.ReportService.
func (s *ReportServiceImpl) Daily(ctx context.Context, req report.DailyReportRequest) (report.DailyReport, error) {
	if err := req.Validate(); err != nil {
		return report.DailyReport{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return report.DailyReport{}, err
	}

	start := s.cal.DayKey(s.now().UTC())
	if req.StartDate != "" {
		start, err = s.cal.ParseDay(req.StartDate)
		if err != nil {
			return report.DailyReport{}, err
		}
	}
	end := start
	if req.EndDate != "" {
		end, err = s.cal.ParseDay(req.EndDate)
		if err != nil {
			return report.DailyReport{}, err
		}
	}

	days, err := s.cal.DateRange(start, end)
	if err != nil {
		return report.DailyReport{}, err
	}

	data, err := s.loadRange(ctx, start, end, nil)
	if err != nil {
		return report.DailyReport{}, err
	}

	byUserDay := make(map[string]attendance.Attendance, len(data.records))
	for _, rec := range data.records {
		byUserDay[userDayKey(rec.UserID, rec.Date)] = rec
	}

	out := report.DailyReport{
		StartDate:   s.cal.FormatDay(start),
		EndDate:     s.cal.FormatDay(end),
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Days:        make([]report.DailyReportDay, 0, len(days)),
	}

	// Most recent day first.
	for i := len(days) - 1; i >= 0; i-- {
		day := days[i]
		hol, isHoliday := data.holidays[s.cal.FormatDay(day)]

		dayOut := report.DailyReportDay{
			Date:      s.cal.FormatDay(day),
			IsHoliday: isHoliday,
			Workers:   []report.DailyReportRow{},
		}
		if isHoliday {
			dayOut.HolidayName = &hol.Name
		}

		for _, u := range data.users {
			if !inScope(act, u) {
				continue
			}

			row := report.DailyReportRow{
				UserID:        u.ID,
				UserCode:      u.UserCode,
				Name:          u.Name,
				Role:          string(u.Role),
				Designation:   u.Designation,
				OvertimeHours: data.overtimes[userDayKey(u.ID, day)],
			}

			if rec, ok := byUserDay[userDayKey(u.ID, day)]; ok {
				row.Status = string(rec.Status)
				if rec.CheckInTime != nil {
					t := rec.CheckInTime.UTC().Format(time.RFC3339)
					row.CheckInTime = &t
				}
				if rec.CheckOutTime != nil {
					t := rec.CheckOutTime.UTC().Format(time.RFC3339)
					row.CheckOutTime = &t
				}
				if rec.CheckInTime != nil && rec.CheckOutTime != nil {
					hours := rec.CheckOutTime.Sub(*rec.CheckInTime).Hours()
					row.WorkingHours = &hours
				}
				if rec.LateMinutes != nil {
					row.LateMinutes = *rec.LateMinutes
				}
			} else if isHoliday {
				row.Status = statusHoliday
			} else {
				// Absence is synthesized at read time, never written.
				row.Status = string(attendance.StatusAbsent)
			}

			dayOut.Workers = append(dayOut.Workers, row)
		}

		sort.SliceStable(dayOut.Workers, func(i, j int) bool {
			ri := user.RolePriority(user.Role(dayOut.Workers[i].Role))
			rj := user.RolePriority(user.Role(dayOut.Workers[j].Role))
			if ri != rj {
				return ri < rj
			}
			return dayOut.Workers[i].Name < dayOut.Workers[j].Name
		})

		out.Days = append(out.Days, dayOut)
	}

	return out, nil
}

// Monthly implements report.ReportService.
func (s *ReportServiceImpl) Monthly(ctx context.Context, req report.MonthlyReportRequest) (report.MonthlyReport, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlyReport{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	if req.UserID != nil && *req.UserID != act.ID && act.Role == user.RoleWorker {
		return report.MonthlyReport{}, report.ErrForbiddenScope
	}

	start := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	data, err := s.loadRange(ctx, start, end, req.UserID)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	days, err := s.cal.DateRange(start, end)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	// For an in-progress month the ledger covers only elapsed days, so the
	// per-worker day counts always sum to WorkingDays. Future days are neither
	// working days nor absences yet.
	today := s.cal.DayKey(s.now().UTC())
	elapsed := days
	for i, d := range days {
		if d.After(today) {
			elapsed = days[:i]
			break
		}
	}

	workingDays := 0
	for _, d := range elapsed {
		if _, hol := data.holidays[s.cal.FormatDay(d)]; !hol {
			workingDays++
		}
	}

	type agg struct {
		summary report.MonthlyWorkerSummary
	}
	aggs := make(map[string]*agg)

	for _, u := range data.users {
		if !inScope(act, u) {
			continue
		}
		if req.UserID != nil && u.ID != *req.UserID {
			continue
		}
		aggs[u.ID] = &agg{summary: report.MonthlyWorkerSummary{
			UserID:      u.ID,
			UserCode:    u.UserCode,
			Name:        u.Name,
			Role:        string(u.Role),
			Designation: u.Designation,
		}}
	}

	for _, rec := range data.records {
		a, ok := aggs[rec.UserID]
		if !ok {
			continue
		}
		if rec.Date.After(today) {
			// Leave marked ahead of time joins the ledger when its day arrives.
			continue
		}
		if _, hol := data.holidays[s.cal.FormatDay(rec.Date)]; hol {
			// Work on a holiday never skews the working-day ledger.
			continue
		}

		switch rec.Status {
		case attendance.StatusPresent:
			a.summary.PresentDays++
			if rec.LateMinutes != nil && *rec.LateMinutes > 0 {
				a.summary.LateDays++
				a.summary.TotalLateMinutes += *rec.LateMinutes
			}
			if rec.CheckInTime != nil && rec.CheckOutTime != nil {
				a.summary.TotalWorkHours += rec.CheckOutTime.Sub(*rec.CheckInTime).Hours()
			}
		case attendance.StatusLeave:
			a.summary.LeaveDays++
		case attendance.StatusPending:
			a.summary.PendingDays++
		}
		// Rejected days fall through to absent via the ledger below.
	}

	out := report.MonthlyReport{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		PeriodStart: s.cal.FormatDay(start),
		PeriodEnd:   s.cal.FormatDay(end),
		WorkingDays: workingDays,
		HolidayDays: len(elapsed) - workingDays,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Workers:     []report.MonthlyWorkerSummary{},
	}

	for _, u := range data.users {
		a, ok := aggs[u.ID]
		if !ok {
			continue
		}
		sum := &a.summary

		for _, d := range elapsed {
			if _, hol := data.holidays[s.cal.FormatDay(d)]; hol {
				continue
			}
			sum.TotalOvertimeHours += data.overtimes[userDayKey(u.ID, d)]
		}

		absent := workingDays - sum.PresentDays - sum.LeaveDays - sum.PendingDays
		if absent < 0 {
			absent = 0
		}
		sum.AbsentDays = absent

		out.Workers = append(out.Workers, *sum)
	}

	sort.SliceStable(out.Workers, func(i, j int) bool {
		ri := user.RolePriority(user.Role(out.Workers[i].Role))
		rj := user.RolePriority(user.Role(out.Workers[j].Role))
		if ri != rj {
			return ri < rj
		}
		return out.Workers[i].Name < out.Workers[j].Name
	})

	return out, nil
}

// Today implements report.ReportService.
func (s *ReportServiceImpl) Today(ctx context.Context) (report.TodaySummary, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return report.TodaySummary{}, err
	}

	day := s.cal.DayKey(s.now().UTC())

	data, err := s.loadRange(ctx, day, day, nil)
	if err != nil {
		return report.TodaySummary{}, err
	}

	byUser := make(map[string]attendance.Attendance, len(data.records))
	for _, rec := range data.records {
		byUser[rec.UserID] = rec
	}

	hol, isHoliday := data.holidays[s.cal.FormatDay(day)]

	out := report.TodaySummary{
		Date:      s.cal.FormatDay(day),
		IsHoliday: isHoliday,
	}
	if isHoliday {
		out.HolidayName = &hol.Name
	}

	for _, u := range data.users {
		if !inScope(act, u) {
			continue
		}
		out.TotalWorkers++

		rec, ok := byUser[u.ID]
		if !ok {
			if !isHoliday {
				out.Absent++
			}
			continue
		}

		switch rec.Status {
		case attendance.StatusPresent:
			out.Present++
			if rec.LateMinutes != nil && *rec.LateMinutes > 0 {
				out.Late++
			}
		case attendance.StatusLeave:
			out.Leave++
		case attendance.StatusPending:
			out.Pending++
		default:
			if !isHoliday {
				out.Absent++
			}
		}
	}

	return out, nil
}
