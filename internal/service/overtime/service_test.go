package overtime

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/re-attendance/attendance-backend-go/internal/domain/overtime"
	"github.com/re-attendance/attendance-backend-go/internal/domain/user"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/calendar"
)

var testTokenAuth = jwtauth.New("HS256", []byte("test-secret"), nil)

func ctxWithClaims(t *testing.T, userID, name string, role user.Role) context.Context {
	t.Helper()
	token, _, err := testTokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"name":    name,
		"role":    string(role),
		"type":    "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fakeOvertimeRepo struct {
	mu     sync.Mutex
	seq    int
	claims map[string]overtime.Overtime
}

func newFakeOvertimeRepo() *fakeOvertimeRepo {
	return &fakeOvertimeRepo{claims: make(map[string]overtime.Overtime)}
}

func (f *fakeOvertimeRepo) Create(_ context.Context, ot overtime.Overtime) (overtime.Overtime, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ot.ID = fmt.Sprintf("ot-%d", f.seq)
	ot.CreatedAt = time.Now()
	ot.UpdatedAt = ot.CreatedAt
	f.claims[ot.ID] = ot
	return ot, nil
}

func (f *fakeOvertimeRepo) GetByID(_ context.Context, id string) (overtime.Overtime, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ot, ok := f.claims[id]
	if !ok {
		return overtime.Overtime{}, overtime.ErrOvertimeNotFound
	}
	return ot, nil
}

func (f *fakeOvertimeRepo) Update(_ context.Context, ot overtime.Overtime) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.claims[ot.ID]; !ok {
		return overtime.ErrOvertimeNotFound
	}
	f.claims[ot.ID] = ot
	return nil
}

func (f *fakeOvertimeRepo) List(_ context.Context, filter overtime.OvertimeFilter) ([]overtime.Overtime, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []overtime.Overtime
	for _, ot := range f.claims {
		if filter.UserID != nil && ot.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && string(ot.Status) != *filter.Status {
			continue
		}
		out = append(out, ot)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOvertimeRepo) SumReportableByDay(_ context.Context, _, _ time.Time, _ *string) (map[string]float64, error) {
	return map[string]float64{}, nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUserCode(_ context.Context, code string) (user.User, error) {
	for _, u := range f.users {
		if u.UserCode == code {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) ListActive(_ context.Context, roleFilter *user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
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

func newFixture(t *testing.T) (*OvertimeServiceImpl, *fakeOvertimeRepo) {
	t.Helper()
	cal, err := calendar.New("+05:30")
	require.NoError(t, err)

	users := &fakeUserRepo{users: map[string]user.User{
		"w-1": {ID: "w-1", UserCode: "WK-001", Name: "Asha", Role: user.RoleWorker, IsActive: true},
		"w-2": {ID: "w-2", UserCode: "WK-002", Name: "Binod", Role: user.RoleWorker, IsActive: true},
		"s-1": {ID: "s-1", UserCode: "SP-001", Name: "Chitra", Role: user.RoleSupervisor, IsActive: true},
		"m-1": {ID: "m-1", UserCode: "MG-001", Name: "Zara", Role: user.RoleManagement, IsActive: true},
	}}

	repo := newFakeOvertimeRepo()
	svc := NewOvertimeService(repo, users, cal)
	svc.now = func() time.Time { return time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestCreateOvertimeForSelf(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	resp, err := svc.Create(ctx, overtime.CreateOvertimeRequest{
		Hours:  2.5,
		Reason: "shipment unloading ran past close",
	})
	require.NoError(t, err)

	assert.Equal(t, "w-1", resp.UserID)
	assert.Equal(t, string(overtime.StatusPending), resp.Status)
	assert.Equal(t, 2.5, resp.Hours)
	assert.Equal(t, "2026-02-10", resp.Date)
}

func TestWorkerCannotFileForAnother(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	_, err := svc.Create(ctx, overtime.CreateOvertimeRequest{
		UserID: "w-2",
		Hours:  1,
		Reason: "stock count",
	})
	assert.ErrorIs(t, err, overtime.ErrForbiddenOvertime)
}

func TestSupervisorFilesForWorker(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := ctxWithClaims(t, "s-1", "Chitra", user.RoleSupervisor)

	resp, err := svc.Create(ctx, overtime.CreateOvertimeRequest{
		UserID: "w-2",
		Date:   "2026-02-08",
		Hours:  3,
		Reason: "festival rush",
	})
	require.NoError(t, err)
	assert.Equal(t, "w-2", resp.UserID)
	assert.Equal(t, "2026-02-08", resp.Date)
}

func TestCreateOvertimeInvalidHours(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)

	_, err := svc.Create(ctx, overtime.CreateOvertimeRequest{Hours: 0, Reason: "x"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, overtime.CreateOvertimeRequest{Hours: 25, Reason: "x"})
	assert.Error(t, err)
}

func TestReviewApprovesClaim(t *testing.T) {
	svc, repo := newFixture(t)
	workerCtx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)
	created, err := svc.Create(workerCtx, overtime.CreateOvertimeRequest{Hours: 2, Reason: "inventory"})
	require.NoError(t, err)

	mgmtCtx := ctxWithClaims(t, "m-1", "Zara", user.RoleManagement)
	reviewed, err := svc.Review(mgmtCtx, overtime.ReviewOvertimeRequest{
		ID:     created.ID,
		Status: string(overtime.StatusApproved),
	})
	require.NoError(t, err)

	assert.Equal(t, string(overtime.StatusApproved), reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "m-1", *reviewed.ReviewedBy)

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, overtime.StatusApproved, stored.Status)
}

func TestReviewSameStateIsNoOp(t *testing.T) {
	svc, repo := newFixture(t)
	workerCtx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)
	created, err := svc.Create(workerCtx, overtime.CreateOvertimeRequest{Hours: 2, Reason: "inventory"})
	require.NoError(t, err)

	mgmtCtx := ctxWithClaims(t, "m-1", "Zara", user.RoleManagement)
	_, err = svc.Review(mgmtCtx, overtime.ReviewOvertimeRequest{ID: created.ID, Status: string(overtime.StatusApproved)})
	require.NoError(t, err)

	again, err := svc.Review(mgmtCtx, overtime.ReviewOvertimeRequest{ID: created.ID, Status: string(overtime.StatusApproved)})
	require.NoError(t, err)
	assert.Equal(t, string(overtime.StatusApproved), again.Status)

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, "m-1", *stored.ReviewedBy)
}

func TestSupervisorCannotReview(t *testing.T) {
	svc, _ := newFixture(t)
	workerCtx := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)
	created, err := svc.Create(workerCtx, overtime.CreateOvertimeRequest{Hours: 2, Reason: "inventory"})
	require.NoError(t, err)

	supCtx := ctxWithClaims(t, "s-1", "Chitra", user.RoleSupervisor)
	_, err = svc.Review(supCtx, overtime.ReviewOvertimeRequest{ID: created.ID, Status: string(overtime.StatusApproved)})
	assert.ErrorIs(t, err, overtime.ErrForbiddenOvertime)
}

func TestListScopesWorkersToSelf(t *testing.T) {
	svc, _ := newFixture(t)
	w1 := ctxWithClaims(t, "w-1", "Asha", user.RoleWorker)
	w2 := ctxWithClaims(t, "w-2", "Binod", user.RoleWorker)

	_, err := svc.Create(w1, overtime.CreateOvertimeRequest{Hours: 1, Reason: "a"})
	require.NoError(t, err)
	_, err = svc.Create(w2, overtime.CreateOvertimeRequest{Hours: 2, Reason: "b"})
	require.NoError(t, err)

	other := "w-2"
	resp, err := svc.List(w1, overtime.OvertimeFilter{UserID: &other})
	require.NoError(t, err)
	require.Len(t, resp.Overtimes, 1)
	assert.Equal(t, "w-1", resp.Overtimes[0].UserID)

	mgmt := ctxWithClaims(t, "m-1", "Zara", user.RoleManagement)
	all, err := svc.List(mgmt, overtime.OvertimeFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Overtimes, 2)
}
