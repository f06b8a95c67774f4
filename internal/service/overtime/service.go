package overtime

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"

	"github.com/re-attendance/attendance-backend-go/internal/domain/overtime"
	"github.com/re-attendance/attendance-backend-go/internal/domain/user"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/calendar"
)

type OvertimeServiceImpl struct {
	overtime.OvertimeRepository
	user.UserRepository
	cal *calendar.Calendar
	now func() time.Time
}

func NewOvertimeService(otRepo overtime.OvertimeRepository, userRepo user.UserRepository, cal *calendar.Calendar) *OvertimeServiceImpl {
	return &OvertimeServiceImpl{
		OvertimeRepository: otRepo,
		UserRepository:     userRepo,
		cal:                cal,
		now:                time.Now,
	}
}

type actor struct {
	ID   string
	Name string
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

	name, _ := claims["name"].(string)
	roleStr, _ := claims["role"].(string)

	return actor{ID: id, Name: name, Role: user.Role(roleStr)}, nil
}

// Create implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Create(ctx context.Context, req overtime.CreateOvertimeRequest) (overtime.OvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	targetID := act.ID
	if req.UserID != "" && req.UserID != act.ID {
		if !act.Role.CanActForOthers() {
			return overtime.OvertimeResponse{}, overtime.ErrForbiddenOvertime
		}
		targetID = req.UserID
	}

	target, err := s.UserRepository.GetByID(ctx, targetID)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}
	if !target.IsActive {
		return overtime.OvertimeResponse{}, user.ErrUserInactive
	}

	day := s.cal.DayKey(s.now().UTC())
	if req.Date != "" {
		day, err = s.cal.ParseDay(req.Date)
		if err != nil {
			return overtime.OvertimeResponse{}, err
		}
	}

	ot, err := s.OvertimeRepository.Create(ctx, overtime.Overtime{
		UserID: target.ID,
		Date:   day,
		Hours:  req.Hours,
		Reason: req.Reason,
		Status: overtime.StatusPending,
	})
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	ot.UserName = &target.Name
	ot.UserCode = &target.UserCode
	return overtime.ToResponse(ot), nil
}

// Review implements overtime.OvertimeService. Reviewing into the state the
// claim is already in returns the claim unchanged.
func (s *OvertimeServiceImpl) Review(ctx context.Context, req overtime.ReviewOvertimeRequest) (overtime.OvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}
	if !act.Role.CanAdjudicate() {
		return overtime.OvertimeResponse{}, overtime.ErrForbiddenOvertime
	}

	ot, err := s.OvertimeRepository.GetByID(ctx, req.ID)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	newStatus := overtime.Status(req.Status)
	if ot.Status == newStatus {
		return overtime.ToResponse(ot), nil
	}

	now := s.now().UTC()
	ot.Status = newStatus
	ot.ReviewedBy = &act.ID
	ot.ReviewedAt = &now

	if err := s.OvertimeRepository.Update(ctx, ot); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	return overtime.ToResponse(ot), nil
}

// List implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) List(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListOvertimeResponse, error) {
	if err := filter.Validate(); err != nil {
		return overtime.ListOvertimeResponse{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return overtime.ListOvertimeResponse{}, err
	}

	if act.Role == user.RoleWorker {
		filter.UserID = &act.ID
	}

	ots, total, err := s.OvertimeRepository.List(ctx, filter)
	if err != nil {
		return overtime.ListOvertimeResponse{}, err
	}

	resp := overtime.ListOvertimeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Overtimes:  make([]overtime.OvertimeResponse, 0, len(ots)),
	}
	if filter.Limit > 0 {
		resp.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}
	for _, ot := range ots {
		resp.Overtimes = append(resp.Overtimes, overtime.ToResponse(ot))
	}
	return resp, nil
}
