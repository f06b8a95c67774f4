package holiday

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"

	"github.com/re-attendance/attendance-backend-go/internal/domain/holiday"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/calendar"
)

type HolidayServiceImpl struct {
	holiday.HolidayRepository
	cal *calendar.Calendar
}

func NewHolidayService(repo holiday.HolidayRepository, cal *calendar.Calendar) *HolidayServiceImpl {
	return &HolidayServiceImpl{HolidayRepository: repo, cal: cal}
}

// Create implements holiday.HolidayService. Role enforcement happens in the
// router; the creator is recorded from claims.
func (s *HolidayServiceImpl) Create(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}

	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return holiday.HolidayResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	createdBy, _ := claims["user_id"].(string)

	day, err := s.cal.ParseDay(req.Date)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}

	h, err := s.HolidayRepository.Create(ctx, holiday.Holiday{
		Name:      req.Name,
		Date:      day,
		Type:      holiday.Type(req.Type),
		CreatedBy: createdBy,
	})
	if err != nil {
		return holiday.HolidayResponse{}, err
	}

	return holiday.ToResponse(h), nil
}

// Delete implements holiday.HolidayService.
func (s *HolidayServiceImpl) Delete(ctx context.Context, id string) error {
	return s.HolidayRepository.Delete(ctx, id)
}

// List implements holiday.HolidayService.
func (s *HolidayServiceImpl) List(ctx context.Context, filter holiday.HolidayFilter) ([]holiday.HolidayResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	holidays, err := s.HolidayRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resps := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		resps = append(resps, holiday.ToResponse(h))
	}
	return resps, nil
}
