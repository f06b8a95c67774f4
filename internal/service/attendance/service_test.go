package attendance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/re-attendance/attendance-backend-go/internal/domain/attendance"
	"github.com/re-attendance/attendance-backend-go/internal/domain/user"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/calendar"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/validator"
)

// ----- fakes -----

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	nextID  int
	records map[string]attendance.Attendance // userID|YYYY-MM-DD
	byID    map[string]attendance.Attendance

	// afterGetByID runs once the read lock is released, letting tests commit
	// a write between a caller's read and its next mutation.
	afterGetByID func()
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{
		records: make(map[string]attendance.Attendance),
		byID:    make(map[string]attendance.Attendance),
	}
}

func dayKeyOf(userID string, day time.Time) string {
	return userID + "|" + day.Format("2006-01-02")
}

func (r *fakeAttendanceRepo) UpsertForDay(ctx context.Context, userID string, day time.Time, mutate attendance.Mutator) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := dayKeyOf(userID, day)
	rec, ok := r.records[key]
	if !ok {
		rec = attendance.Attendance{UserID: userID, Date: day}
	}

	if err := mutate(&rec); err != nil {
		return attendance.Attendance{}, err
	}

	if rec.ID == "" {
		r.nextID++
		rec.ID = fmt.Sprintf("att-%d", r.nextID)
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()
	r.records[key] = rec
	r.byID[rec.ID] = rec
	return rec, nil
}

func (r *fakeAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.mu.Lock()
	rec, ok := r.byID[id]
	r.mu.Unlock()
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if r.afterGetByID != nil {
		r.afterGetByID()
	}
	return rec, nil
}

func (r *fakeAttendanceRepo) GetForDay(ctx context.Context, userID string, day time.Time) (*attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[dayKeyOf(userID, day)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeAttendanceRepo) FindRange(ctx context.Context, start, end time.Time, userID *string) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range r.records {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		if userID != nil && rec.UserID != *userID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeAttendanceRepo) List(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.Attendance, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range r.records {
		if filter.UserID != nil && rec.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAttendanceRepo) ListPending(ctx context.Context, page, limit int) ([]attendance.Attendance, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range r.records {
		if rec.Status == attendance.StatusPending {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUserCode(ctx context.Context, code string) (user.User, error) {
	for _, u := range r.users {
		if u.UserCode == code {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *fakeUserRepo) ListActive(ctx context.Context, roleFilter *user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range r.users {
		if !u.IsActive {
			continue
		}
		if roleFilter != nil && u.Role != *roleFilter {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type fakeVerifier struct {
	err error
}

func (v *fakeVerifier) Compare(ctx context.Context, reference, candidate []byte) error {
	return v.err
}

type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{
		"profiles/ref.jpg": []byte("reference-photo"),
	}}
}

func (s *fakeStorage) Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
	return path, nil
}

func (s *fakeStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(ctx context.Context, path string) error { return nil }

func (s *fakeStorage) GetURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "http://localhost/uploads/" + path, nil
}

func (s *fakeStorage) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok, nil
}

// ----- helpers -----

var testTokenAuth = jwtauth.New("HS256", []byte("test-secret"), nil)

func ctxWithClaims(t *testing.T, userID, name string, role user.Role) context.Context {
	t.Helper()
	tok, _, err := testTokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"name":    name,
		"role":    string(role),
		"type":    "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), tok, nil)
}

func photoUpload(t *testing.T) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("photo", "selfie.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("selfie-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	fh := form.File["photo"][0]
	f, err := fh.Open()
	require.NoError(t, err)
	return f, fh
}

type fixture struct {
	svc     *AttendanceServiceImpl
	attRepo *fakeAttendanceRepo
	store   *fakeStorage
	verify  *fakeVerifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cal, err := calendar.New("+05:30")
	require.NoError(t, err)

	ref := "profiles/ref.jpg"
	users := &fakeUserRepo{users: map[string]user.User{
		"w-1": {ID: "w-1", UserCode: "WKR-001", Name: "Asha", Role: user.RoleWorker, ProfileImageURL: &ref, IsActive: true},
		"w-2": {ID: "w-2", UserCode: "WKR-002", Name: "Binod", Role: user.RoleWorker, ProfileImageURL: &ref, IsActive: true},
		"s-1": {ID: "s-1", UserCode: "SUP-001", Name: "Chitra", Role: user.RoleSupervisor, ProfileImageURL: &ref, IsActive: true},
		"x-1": {ID: "x-1", UserCode: "WKR-009", Name: "Noimg", Role: user.RoleWorker, IsActive: true},
	}}

	f := &fixture{
		attRepo: newFakeAttendanceRepo(),
		store:   newFakeStorage(),
		verify:  &fakeVerifier{},
	}
	f.svc = NewAttendanceService(f.attRepo, users, f.verify, f.store, cal, "09:00", 15)
	// 2026-03-02 09:10 IST
	f.svc.now = func() time.Time {
		return time.Date(2026, time.March, 2, 3, 40, 0, 0, time.UTC)
	}
	return f
}

func checkInReq(t *testing.T, target string) attendance.CheckInRequest {
	file, fh := photoUpload(t)
	return attendance.CheckInRequest{
		TargetUserID: target,
		Location:     &attendance.Location{Latitude: 12.97, Longitude: 77.59},
		File:         file,
		FileHeader:   fh,
	}
}

func checkOutReq(t *testing.T, target string) attendance.CheckOutRequest {
	file, fh := photoUpload(t)
	return attendance.CheckOutRequest{
		TargetUserID: target,
		Location:     &attendance.Location{Latitude: 12.97, Longitude: 77.59},
		File:         file,
		FileHeader:   fh,
	}
}

// ----- tests -----

func TestCheckInHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	resp, err := f.svc.CheckIn(ctx, checkInReq(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "present", resp.Status)
	assert.Equal(t, "2026-03-02", resp.Date)
	require.NotNil(t, resp.CheckInTime)
	assert.Nil(t, resp.LateMinutes) // 09:10 IST is within the 15-minute grace
	require.NotNil(t, resp.CheckInPhotoURL)

	exists, _ := f.store.Exists(context.Background(), *resp.CheckInPhotoURL)
	assert.True(t, exists)
}

func TestCheckInComputesLateMinutes(t *testing.T) {
	f := newFixture(t)
	// 2026-03-02 09:40 IST, 25 minutes past the grace deadline
	f.svc.now = func() time.Time {
		return time.Date(2026, time.March, 2, 4, 10, 0, 0, time.UTC)
	}
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	resp, err := f.svc.CheckIn(ctx, checkInReq(t, ""))
	require.NoError(t, err)
	require.NotNil(t, resp.LateMinutes)
	assert.Equal(t, 25, *resp.LateMinutes)
}

func TestCheckInWorkerCannotTargetAnother(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	_, err := f.svc.CheckIn(ctx, checkInReq(t, "w-2"))
	assert.ErrorIs(t, err, attendance.ErrForbiddenTarget)
}

func TestCheckInSupervisorCanTargetWorker(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "s-1", "Chitra", user.RoleSupervisor)

	resp, err := f.svc.CheckIn(ctx, checkInReq(t, "w-2"))
	require.NoError(t, err)
	assert.Equal(t, "w-2", resp.UserID)
	assert.Contains(t, resp.Notes, "check-in by Chitra")
}

func TestCheckInFaceMismatch(t *testing.T) {
	f := newFixture(t)
	f.verify.err = attendance.ErrFaceMismatch
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	_, err := f.svc.CheckIn(ctx, checkInReq(t, ""))
	assert.ErrorIs(t, err, attendance.ErrFaceMismatch)

	rec, _ := f.attRepo.GetForDay(context.Background(), "w-1", time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))
	assert.Nil(t, rec)
}

func TestCheckInNoReferencePhoto(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "x-1", "Noimg", user.RoleWorker)

	_, err := f.svc.CheckIn(ctx, checkInReq(t, ""))
	assert.ErrorIs(t, err, attendance.ErrNoReferencePhoto)
}

func TestCheckInThenCheckOut(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	_, err := f.svc.CheckIn(ctx, checkInReq(t, ""))
	require.NoError(t, err)

	f.svc.now = func() time.Time {
		return time.Date(2026, time.March, 2, 12, 30, 0, 0, time.UTC) // 18:00 IST
	}
	resp, err := f.svc.CheckOut(ctx, checkOutReq(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "present", resp.Status)
	require.NotNil(t, resp.CheckOutTime)
	require.NotNil(t, resp.WorkingHours)
	assert.InDelta(t, 8.83, *resp.WorkingHours, 0.01)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	_, err := f.svc.CheckOut(ctx, checkOutReq(t, ""))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestConcurrentCheckInOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	const n = 8
	reqs := make([]attendance.CheckInRequest, n)
	for i := range reqs {
		reqs[i] = checkInReq(t, "")
	}

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(req attendance.CheckInRequest) {
			defer wg.Done()
			_, err := f.svc.CheckIn(ctx, req)
			errs <- err
		}(reqs[i])
	}
	wg.Wait()
	close(errs)

	ok, conflict := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case err == attendance.ErrAlreadyCheckedIn:
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one check-in should win")
	assert.Equal(t, n-1, conflict)
}

func TestSyncCheckInLandsPending(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	file, fh := photoUpload(t)
	resp, err := f.svc.CheckInPending(ctx, attendance.SyncCheckInRequest{
		Timestamp:  "2026-03-02T08:45:00+05:30",
		Location:   &attendance.Location{Latitude: 12.97, Longitude: 77.59},
		File:       file,
		FileHeader: fh,
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2026-03-02", resp.Date)
	assert.Contains(t, resp.Notes, "awaiting approval")
}

func TestSyncCheckInFutureTimestamp(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	file, fh := photoUpload(t)
	_, err := f.svc.CheckInPending(ctx, attendance.SyncCheckInRequest{
		Timestamp:  "2026-03-03T09:00:00+05:30",
		Location:   &attendance.Location{Latitude: 12.97, Longitude: 77.59},
		File:       file,
		FileHeader: fh,
	})
	assert.ErrorIs(t, err, attendance.ErrTimestampInFuture)
}

func TestSyncDayBucketFollowsClientTime(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	// 2026-03-01 23:30 IST is 18:00 UTC on the same calendar day locally.
	file, fh := photoUpload(t)
	resp, err := f.svc.CheckInPending(ctx, attendance.SyncCheckInRequest{
		Timestamp:  "2026-03-01T23:30:00+05:30",
		Location:   &attendance.Location{Latitude: 12.97, Longitude: 77.59},
		File:       file,
		FileHeader: fh,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", resp.Date)
}

func TestMarkWorkerLeave(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "s-1", "Chitra", user.RoleSupervisor)

	notes := "approved annual leave"
	resp, err := f.svc.MarkWorker(ctx, attendance.MarkWorkerRequest{
		UserID: "w-2",
		Date:   "2026-03-05",
		Status: "leave",
		Notes:  &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, "leave", resp.Status)
	assert.Equal(t, "2026-03-05", resp.Date)
	assert.Contains(t, resp.Notes, "marked leave by Chitra")
	assert.Contains(t, resp.Notes, "approved annual leave")
}

func TestMarkWorkerForbiddenForWorkers(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	_, err := f.svc.MarkWorker(ctx, attendance.MarkWorkerRequest{
		UserID: "w-2",
		Status: "leave",
	})
	assert.ErrorIs(t, err, attendance.ErrForbiddenTarget)
}

func TestApproveRejectFlow(t *testing.T) {
	f := newFixture(t)
	workerCtx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	file, fh := photoUpload(t)
	pending, err := f.svc.CheckInPending(workerCtx, attendance.SyncCheckInRequest{
		Timestamp:  "2026-03-02T08:45:00+05:30",
		Location:   &attendance.Location{Latitude: 12.97, Longitude: 77.59},
		File:       file,
		FileHeader: fh,
	})
	require.NoError(t, err)

	adminCtx := ctxWithClaims(t, "a-1", "Admin", user.RoleAdmin)

	resp, err := f.svc.Approve(adminCtx, attendance.ApproveRequest{ID: pending.ID})
	require.NoError(t, err)
	assert.Equal(t, "present", resp.Status)

	// Already resolved; a second adjudication is refused.
	_, err = f.svc.Reject(adminCtx, attendance.RejectRequest{ID: pending.ID, Reason: "late submission"})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotPending)
}

func TestApproveRevalidatesAgainstConcurrentLiveEvent(t *testing.T) {
	f := newFixture(t)
	workerCtx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	file, fh := photoUpload(t)
	pending, err := f.svc.CheckInPending(workerCtx, attendance.SyncCheckInRequest{
		Timestamp:  "2026-03-02T08:45:00+05:30",
		Location:   &attendance.Location{Latitude: 12.97, Longitude: 77.59},
		File:       file,
		FileHeader: fh,
	})
	require.NoError(t, err)

	// A live check-in commits between the adjudicator's read of the record
	// and its write. The approval must act on the committed state, not the
	// stale snapshot.
	f.attRepo.afterGetByID = func() {
		f.attRepo.afterGetByID = nil
		_, err := f.svc.CheckIn(workerCtx, checkInReq(t, ""))
		require.NoError(t, err)
	}

	adminCtx := ctxWithClaims(t, "a-1", "Admin", user.RoleAdmin)
	_, err = f.svc.Approve(adminCtx, attendance.ApproveRequest{ID: pending.ID})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotPending)

	// The concurrent check-in's audit trail survives.
	final, err := f.attRepo.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, final.Status)
	assert.Contains(t, final.Notes, "overwrote pending record")
	assert.Nil(t, final.ApprovedBy)
}

func TestMarkWorkerRefusesEvidenceFreeStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "s-1", "Chitra", user.RoleSupervisor)

	// Present needs photo evidence through check-in; absent only ever exists
	// in report output.
	for _, status := range []string{"present", "absent", "rejected"} {
		_, err := f.svc.MarkWorker(ctx, attendance.MarkWorkerRequest{
			UserID: "w-2",
			Status: status,
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs, "status %q must fail validation", status)
	}
}

func TestAdjudicationRequiresPrivilege(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	_, err := f.svc.Approve(ctx, attendance.ApproveRequest{ID: "att-1"})
	assert.ErrorIs(t, err, attendance.ErrForbiddenTarget)
}

func TestHistoryWorkerScopedToSelf(t *testing.T) {
	f := newFixture(t)
	workerCtx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)
	supCtx := ctxWithClaims(t, "s-1", "Chitra", user.RoleSupervisor)

	_, err := f.svc.CheckIn(workerCtx, checkInReq(t, ""))
	require.NoError(t, err)
	_, err = f.svc.CheckIn(supCtx, checkInReq(t, "w-2"))
	require.NoError(t, err)

	other := "w-2"
	list, err := f.svc.History(workerCtx, attendance.HistoryFilter{UserID: &other})
	require.NoError(t, err)

	require.Len(t, list.Attendances, 1)
	assert.Equal(t, "w-1", list.Attendances[0].UserID)
}
