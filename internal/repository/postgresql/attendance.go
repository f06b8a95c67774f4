package postgresql

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/re-attendance/attendance-backend-go/internal/domain/attendance"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.user_id, a.date, a.status,
	a.check_in_time, a.check_out_time,
	a.check_in_latitude, a.check_in_longitude, a.check_in_address,
	a.check_out_latitude, a.check_out_longitude, a.check_out_address,
	a.check_in_photo_url, a.check_out_photo_url,
	a.late_minutes, a.notes, a.approved_by, a.approved_at, a.rejection_reason,
	a.created_at, a.updated_at`

const attendanceUserJoin = `
	LEFT JOIN users u ON u.id = a.user_id`

const attendanceUserColumns = `,
	u.name AS user_name, u.user_code, u.role AS user_role, u.designation`

func scanAttendance(row pgx.Row, withUser bool) (attendance.Attendance, error) {
	var att attendance.Attendance
	var inLat, inLng, outLat, outLng *float64
	var inAddr, outAddr *string

	dest := []interface{}{
		&att.ID, &att.UserID, &att.Date, &att.Status,
		&att.CheckInTime, &att.CheckOutTime,
		&inLat, &inLng, &inAddr,
		&outLat, &outLng, &outAddr,
		&att.CheckInPhotoURL, &att.CheckOutPhotoURL,
		&att.LateMinutes, &att.Notes, &att.ApprovedBy, &att.ApprovedAt, &att.RejectionReason,
		&att.CreatedAt, &att.UpdatedAt,
	}
	if withUser {
		dest = append(dest, &att.UserName, &att.UserCode, &att.UserRole, &att.UserDesignation)
	}

	if err := row.Scan(dest...); err != nil {
		return attendance.Attendance{}, err
	}

	if inLat != nil && inLng != nil {
		att.CheckInLocation = &attendance.Location{Latitude: *inLat, Longitude: *inLng, Address: inAddr}
	}
	if outLat != nil && outLng != nil {
		att.CheckOutLocation = &attendance.Location{Latitude: *outLat, Longitude: *outLng, Address: outAddr}
	}

	return att, nil
}

func locationFields(loc *attendance.Location) (lat, lng *float64, addr *string) {
	if loc == nil {
		return nil, nil, nil
	}
	return &loc.Latitude, &loc.Longitude, loc.Address
}

// dayLockKey folds the (user, day) pair into the advisory lock keyspace.
func dayLockKey(userID string, day time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte("|"))
	h.Write([]byte(day.Format("2006-01-02")))
	return int64(h.Sum64())
}

// UpsertForDay implements attendance.AttendanceRepository. The transaction
// takes pg_advisory_xact_lock on the (user, day) pair before reading, so
// concurrent events for the same worker-day serialize and each mutator sees
// the previous winner's write. Transient serialization failures retry a
// bounded number of times; domain errors surface immediately.
func (r *attendanceRepository) UpsertForDay(ctx context.Context, userID string, day time.Time, mutate attendance.Mutator) (attendance.Attendance, error) {
	const maxAttempts = 3

	var result attendance.Attendance
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := WithTransaction(ctx, r.db, func(txCtx context.Context, tx pgx.Tx) error {
			if _, err := tx.Exec(txCtx, `SELECT pg_advisory_xact_lock($1)`, dayLockKey(userID, day)); err != nil {
				return fmt.Errorf("failed to acquire day lock: %w", err)
			}

			query := `SELECT` + attendanceColumns + ` FROM attendances a WHERE a.user_id = $1 AND a.date = $2`
			rec, err := scanAttendance(tx.QueryRow(txCtx, query, userID, day), false)
			if err != nil {
				if err != pgx.ErrNoRows {
					return fmt.Errorf("failed to load attendance for day: %w", err)
				}
				rec = attendance.Attendance{UserID: userID, Date: day}
			}

			if err := mutate(&rec); err != nil {
				return err
			}

			if rec.ID == "" {
				result, err = r.insert(txCtx, tx, rec)
			} else {
				err = r.update(txCtx, tx, rec)
				result = rec
			}
			return err
		})
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return attendance.Attendance{}, err
		}
		// Bounded backoff before the lock is contended again.
		time.Sleep(time.Duration(attempt+1) * 25 * time.Millisecond)
	}

	return attendance.Attendance{}, fmt.Errorf("attendance upsert did not settle: %w", lastErr)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected, unique_violation from a
		// concurrent first insert
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return true
		}
	}
	return pgconn.SafeToRetry(err)
}

func (r *attendanceRepository) insert(ctx context.Context, q database.Querier, rec attendance.Attendance) (attendance.Attendance, error) {
	inLat, inLng, inAddr := locationFields(rec.CheckInLocation)
	outLat, outLng, outAddr := locationFields(rec.CheckOutLocation)

	query := `
		INSERT INTO attendances (
			user_id, date, status, check_in_time, check_out_time,
			check_in_latitude, check_in_longitude, check_in_address,
			check_out_latitude, check_out_longitude, check_out_address,
			check_in_photo_url, check_out_photo_url,
			late_minutes, notes, approved_by, approved_at, rejection_reason
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.UserID, rec.Date, rec.Status, rec.CheckInTime, rec.CheckOutTime,
		inLat, inLng, inAddr,
		outLat, outLng, outAddr,
		rec.CheckInPhotoURL, rec.CheckOutPhotoURL,
		rec.LateMinutes, rec.Notes, rec.ApprovedBy, rec.ApprovedAt, rec.RejectionReason,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return rec, nil
}

func (r *attendanceRepository) update(ctx context.Context, q database.Querier, rec attendance.Attendance) error {
	inLat, inLng, inAddr := locationFields(rec.CheckInLocation)
	outLat, outLng, outAddr := locationFields(rec.CheckOutLocation)

	query := `
		UPDATE attendances SET
			status = $2, check_in_time = $3, check_out_time = $4,
			check_in_latitude = $5, check_in_longitude = $6, check_in_address = $7,
			check_out_latitude = $8, check_out_longitude = $9, check_out_address = $10,
			check_in_photo_url = $11, check_out_photo_url = $12,
			late_minutes = $13, notes = $14,
			approved_by = $15, approved_at = $16, rejection_reason = $17,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		rec.ID, rec.Status, rec.CheckInTime, rec.CheckOutTime,
		inLat, inLng, inAddr,
		outLat, outLng, outAddr,
		rec.CheckInPhotoURL, rec.CheckOutPhotoURL,
		rec.LateMinutes, rec.Notes,
		rec.ApprovedBy, rec.ApprovedAt, rec.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + attendanceColumns + attendanceUserColumns + `
		FROM attendances a` + attendanceUserJoin + `
		WHERE a.id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return att, nil
}

// GetForDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetForDay(ctx context.Context, userID string, day time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + attendanceColumns + attendanceUserColumns + `
		FROM attendances a` + attendanceUserJoin + `
		WHERE a.user_id = $1 AND a.date = $2`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, day), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No record for this day
		}
		return nil, fmt.Errorf("failed to get attendance for day: %w", err)
	}

	return &att, nil
}

// FindRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) FindRange(ctx context.Context, start, end time.Time, userID *string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + attendanceColumns + attendanceUserColumns + `
		FROM attendances a` + attendanceUserJoin + `
		WHERE a.date >= $1 AND a.date <= $2`
	args := []interface{}{start, end}
	if userID != nil {
		query += ` AND a.user_id = $3`
		args = append(args, *userID)
	}
	query += ` ORDER BY a.date ASC, u.name ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find attendance range: %w", err)
	}
	defer rows.Close()

	var atts []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		atts = append(atts, att)
	}

	return atts, rows.Err()
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM attendances a WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	query := `SELECT` + attendanceColumns + attendanceUserColumns + `
		FROM attendances a` + attendanceUserJoin + `
		WHERE ` + baseWhere + `
		ORDER BY a.date DESC, u.name ASC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var atts []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		atts = append(atts, att)
	}

	return atts, total, rows.Err()
}

// ListPending implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListPending(ctx context.Context, page, limit int) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendances a WHERE a.status = 'pending'`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending attendances: %w", err)
	}

	query := `SELECT` + attendanceColumns + attendanceUserColumns + `
		FROM attendances a` + attendanceUserJoin + `
		WHERE a.status = 'pending'
		ORDER BY a.date ASC, a.created_at ASC
		LIMIT $1 OFFSET $2`

	rows, err := q.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending attendances: %w", err)
	}
	defer rows.Close()

	var atts []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		atts = append(atts, att)
	}

	return atts, total, rows.Err()
}
