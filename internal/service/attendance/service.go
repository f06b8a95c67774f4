package attendance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"

	"github.com/re-attendance/attendance-backend-go/internal/domain/attendance"
	"github.com/re-attendance/attendance-backend-go/internal/domain/user"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/calendar"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/facematch"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/storage"
)

// clockSkewTolerance absorbs small client clock drift on offline-sync
// timestamps before they count as "in the future".
const clockSkewTolerance = 2 * time.Minute

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	user.UserRepository
	verifier     facematch.Verifier
	fileStorage  storage.FileStorage
	cal          *calendar.Calendar
	workdayStart string // HH:MM in the org's local time
	graceMinutes int
	now          func() time.Time
}

func NewAttendanceService(
	attRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	verifier facematch.Verifier,
	fileStorage storage.FileStorage,
	cal *calendar.Calendar,
	workdayStart string,
	graceMinutes int,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		AttendanceRepository: attRepo,
		UserRepository:       userRepo,
		verifier:             verifier,
		fileStorage:          fileStorage,
		cal:                  cal,
		workdayStart:         workdayStart,
		graceMinutes:         graceMinutes,
		now:                  time.Now,
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

// resolveTarget decides whose record the event applies to. Workers always
// act on themselves; supervisors and management may name another worker.
func (s *AttendanceServiceImpl) resolveTarget(ctx context.Context, act actor, targetUserID string) (user.User, error) {
	targetID := act.ID
	if targetUserID != "" && targetUserID != act.ID {
		if !act.Role.CanActForOthers() {
			return user.User{}, attendance.ErrForbiddenTarget
		}
		targetID = targetUserID
	}

	target, err := s.UserRepository.GetByID(ctx, targetID)
	if err != nil {
		return user.User{}, err
	}
	if !target.IsActive {
		return user.User{}, user.ErrUserInactive
	}

	return target, nil
}

// verifyAndStorePhoto runs face verification against the worker's reference
// photo, then persists the selfie. Returns the stored path.
func (s *AttendanceServiceImpl) verifyAndStorePhoto(ctx context.Context, target user.User, file multipart.File, header *multipart.FileHeader, day time.Time) (string, error) {
	photo, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read photo upload: %w", err)
	}

	if target.ProfileImageURL == nil || *target.ProfileImageURL == "" {
		return "", attendance.ErrNoReferencePhoto
	}

	ref, err := s.fileStorage.Download(ctx, *target.ProfileImageURL)
	if err != nil {
		return "", fmt.Errorf("failed to load reference photo: %w", err)
	}
	defer ref.Close()

	refBytes, err := io.ReadAll(ref)
	if err != nil {
		return "", fmt.Errorf("failed to read reference photo: %w", err)
	}

	if err := s.verifier.Compare(ctx, refBytes, photo); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := fmt.Sprintf("attendance/%s/%s/%s%s", target.ID, s.cal.FormatDay(day), uuid.NewString(), ext)

	contentType := header.Header.Get("Content-Type")
	stored, err := s.fileStorage.Upload(ctx, bytes.NewReader(photo), path, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}

	return stored, nil
}

// lateMinutes computes how many minutes past the workday start plus grace the
// check-in landed, in the org's local time. Zero when on time.
func (s *AttendanceServiceImpl) lateMinutes(day time.Time, checkIn time.Time) int {
	parts := strings.SplitN(s.workdayStart, ":", 2)
	hour, minute := 9, 0
	if len(parts) == 2 {
		fmt.Sscanf(parts[0], "%d", &hour)
		fmt.Sscanf(parts[1], "%d", &minute)
	}

	deadline := s.cal.At(day, hour, minute).Add(time.Duration(s.graceMinutes) * time.Minute)
	if !checkIn.After(deadline) {
		return 0
	}
	return int(checkIn.Sub(deadline).Minutes())
}

func (s *AttendanceServiceImpl) applyForDay(ctx context.Context, ev attendance.Event, markLate bool) (attendance.AttendanceResponse, error) {
	day := s.cal.DayKey(ev.EffectiveAt)

	rec, err := s.AttendanceRepository.UpsertForDay(ctx, ev.WorkerID, day, func(rec *attendance.Attendance) error {
		if err := attendance.ApplyEvent(rec, ev); err != nil {
			return err
		}
		if markLate && ev.Kind == attendance.KindCheckIn {
			late := s.lateMinutes(day, ev.EffectiveAt)
			if late > 0 {
				rec.LateMinutes = &late
			}
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.ToResponse(rec), nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	target, err := s.resolveTarget(ctx, act, req.TargetUserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	photoURL, err := s.verifyAndStorePhoto(ctx, target, req.File, req.FileHeader, s.cal.DayKey(now))
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return s.applyForDay(ctx, attendance.Event{
		Kind:        attendance.KindCheckIn,
		Channel:     attendance.ChannelLive,
		ActorID:     act.ID,
		ActorName:   act.Name,
		WorkerID:    target.ID,
		EffectiveAt: now,
		Location:    req.Location,
		PhotoURL:    photoURL,
	}, true)
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	target, err := s.resolveTarget(ctx, act, req.TargetUserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	photoURL, err := s.verifyAndStorePhoto(ctx, target, req.File, req.FileHeader, s.cal.DayKey(now))
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return s.applyForDay(ctx, attendance.Event{
		Kind:        attendance.KindCheckOut,
		Channel:     attendance.ChannelLive,
		ActorID:     act.ID,
		ActorName:   act.Name,
		WorkerID:    target.ID,
		EffectiveAt: now,
		Location:    req.Location,
		PhotoURL:    photoURL,
	}, false)
}

func (s *AttendanceServiceImpl) clientTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, attendance.ErrMissingTimestamp
	}
	if ts.After(s.now().Add(clockSkewTolerance)) {
		return time.Time{}, attendance.ErrTimestampInFuture
	}
	return ts.UTC(), nil
}

// CheckInPending implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckInPending(ctx context.Context, req attendance.SyncCheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	target, err := s.resolveTarget(ctx, act, req.TargetUserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	ts, err := s.clientTimestamp(req.Timestamp)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	photoURL, err := s.verifyAndStorePhoto(ctx, target, req.File, req.FileHeader, s.cal.DayKey(ts))
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return s.applyForDay(ctx, attendance.Event{
		Kind:        attendance.KindCheckIn,
		Channel:     attendance.ChannelSync,
		ActorID:     act.ID,
		ActorName:   act.Name,
		WorkerID:    target.ID,
		EffectiveAt: ts,
		Location:    req.Location,
		PhotoURL:    photoURL,
	}, true)
}

// CheckOutPending implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOutPending(ctx context.Context, req attendance.SyncCheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	target, err := s.resolveTarget(ctx, act, req.TargetUserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	ts, err := s.clientTimestamp(req.Timestamp)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	photoURL, err := s.verifyAndStorePhoto(ctx, target, req.File, req.FileHeader, s.cal.DayKey(ts))
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return s.applyForDay(ctx, attendance.Event{
		Kind:        attendance.KindCheckOut,
		Channel:     attendance.ChannelSync,
		ActorID:     act.ID,
		ActorName:   act.Name,
		WorkerID:    target.ID,
		EffectiveAt: ts,
		Location:    req.Location,
		PhotoURL:    photoURL,
	}, false)
}

// MarkWorker implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkWorker(ctx context.Context, req attendance.MarkWorkerRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !act.Role.CanActForOthers() {
		return attendance.AttendanceResponse{}, attendance.ErrForbiddenTarget
	}

	target, err := s.resolveTarget(ctx, act, req.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	day := s.cal.DayKey(now)
	if req.Date != "" {
		day, err = s.cal.ParseDay(req.Date)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
	}

	rec, err := s.AttendanceRepository.UpsertForDay(ctx, target.ID, day, func(rec *attendance.Attendance) error {
		prior := rec.Status
		rec.Status = attendance.Status(strings.ToLower(req.Status))
		note := fmt.Sprintf("marked %s by %s", req.Status, act.Name)
		if prior != "" && prior != rec.Status {
			note += fmt.Sprintf(" (was %s)", prior)
		}
		if req.Notes != nil && *req.Notes != "" {
			note += ": " + *req.Notes
		}
		rec.AppendNote(now, note)
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.ToResponse(rec), nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if act.Role == user.RoleWorker && rec.UserID != act.ID {
		return attendance.AttendanceResponse{}, attendance.ErrForbiddenTarget
	}

	return attendance.ToResponse(rec), nil
}

// History implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) History(ctx context.Context, filter attendance.HistoryFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	// Workers only ever see their own history.
	if act.Role == user.RoleWorker {
		filter.UserID = &act.ID
	}

	recs, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	return buildList(recs, total, filter.Page, filter.Limit), nil
}

// ListPending implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListPending(ctx context.Context, page, limit int) (attendance.ListAttendanceResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	recs, total, err := s.AttendanceRepository.ListPending(ctx, page, limit)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	return buildList(recs, total, page, limit), nil
}

// Approve implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Approve(ctx context.Context, req attendance.ApproveRequest) (attendance.AttendanceResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !act.Role.CanAdjudicate() {
		return attendance.AttendanceResponse{}, attendance.ErrForbiddenTarget
	}

	// GetByID only resolves the (worker, day) pair; the pending check and the
	// status write happen inside the day lock, where concurrent live events
	// for the same day are serialized.
	loaded, err := s.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	rec, err := s.AttendanceRepository.UpsertForDay(ctx, loaded.UserID, loaded.Date, func(rec *attendance.Attendance) error {
		if err := attendance.Approve(rec, act.ID, now); err != nil {
			return err
		}
		if req.Notes != nil && *req.Notes != "" {
			rec.AppendNote(now, "approval note: "+*req.Notes)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.ToResponse(rec), nil
}

// Reject implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Reject(ctx context.Context, req attendance.RejectRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	act, err := actorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !act.Role.CanAdjudicate() {
		return attendance.AttendanceResponse{}, attendance.ErrForbiddenTarget
	}

	loaded, err := s.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	rec, err := s.AttendanceRepository.UpsertForDay(ctx, loaded.UserID, loaded.Date, func(rec *attendance.Attendance) error {
		return attendance.Reject(rec, act.ID, req.Reason, now)
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.ToResponse(rec), nil
}

func buildList(recs []attendance.Attendance, total int64, page, limit int) attendance.ListAttendanceResponse {
	resp := attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		Attendances: make([]attendance.AttendanceResponse, 0, len(recs)),
	}
	if limit > 0 {
		resp.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	for _, rec := range recs {
		resp.Attendances = append(resp.Attendances, attendance.ToResponse(rec))
	}
	return resp
}
