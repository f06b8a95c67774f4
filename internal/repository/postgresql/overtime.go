package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/re-attendance/attendance-backend-go/internal/domain/overtime"
	"github.com/re-attendance/attendance-backend-go/internal/pkg/database"
)

type overtimeRepository struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.OvertimeRepository {
	return &overtimeRepository{db: db}
}

const overtimeColumns = `
	o.id, o.user_id, o.date, o.hours, o.reason, o.status,
	o.reviewed_by, o.reviewed_at, o.created_at, o.updated_at`

func scanOvertime(row pgx.Row, withUser bool) (overtime.Overtime, error) {
	var ot overtime.Overtime
	dest := []interface{}{
		&ot.ID, &ot.UserID, &ot.Date, &ot.Hours, &ot.Reason, &ot.Status,
		&ot.ReviewedBy, &ot.ReviewedAt, &ot.CreatedAt, &ot.UpdatedAt,
	}
	if withUser {
		dest = append(dest, &ot.UserName, &ot.UserCode)
	}
	err := row.Scan(dest...)
	return ot, err
}

// Create implements overtime.OvertimeRepository.
func (r *overtimeRepository) Create(ctx context.Context, ot overtime.Overtime) (overtime.Overtime, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtimes (user_id, date, hours, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, ot.UserID, ot.Date, ot.Hours, ot.Reason, ot.Status).
		Scan(&ot.ID, &ot.CreatedAt, &ot.UpdatedAt)
	if err != nil {
		return overtime.Overtime{}, fmt.Errorf("failed to create overtime: %w", err)
	}

	return ot, nil
}

// GetByID implements overtime.OvertimeRepository.
func (r *overtimeRepository) GetByID(ctx context.Context, id string) (overtime.Overtime, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + overtimeColumns + `, u.name AS user_name, u.user_code
		FROM overtimes o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`

	ot, err := scanOvertime(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return overtime.Overtime{}, overtime.ErrOvertimeNotFound
		}
		return overtime.Overtime{}, fmt.Errorf("failed to get overtime by ID: %w", err)
	}

	return ot, nil
}

// Update implements overtime.OvertimeRepository.
func (r *overtimeRepository) Update(ctx context.Context, ot overtime.Overtime) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtimes SET
			status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, ot.ID, ot.Status, ot.ReviewedBy, ot.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to update overtime: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return overtime.ErrOvertimeNotFound
	}

	return nil
}

// List implements overtime.OvertimeRepository.
func (r *overtimeRepository) List(ctx context.Context, filter overtime.OvertimeFilter) ([]overtime.Overtime, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND o.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND o.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND o.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND o.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM overtimes o WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count overtimes: %w", err)
	}

	query := `SELECT` + overtimeColumns + `, u.name AS user_name, u.user_code
		FROM overtimes o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE ` + baseWhere + `
		ORDER BY o.date DESC, o.created_at DESC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list overtimes: %w", err)
	}
	defer rows.Close()

	var ots []overtime.Overtime
	for rows.Next() {
		ot, err := scanOvertime(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan overtime: %w", err)
		}
		ots = append(ots, ot)
	}

	return ots, total, rows.Err()
}

// SumReportableByDay implements overtime.OvertimeRepository.
func (r *overtimeRepository) SumReportableByDay(ctx context.Context, start, end time.Time, userID *string) (map[string]float64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT user_id, date, SUM(hours)
		FROM overtimes
		WHERE status IN ('approved', 'pending') AND date >= $1 AND date <= $2`
	args := []interface{}{start, end}
	if userID != nil {
		query += ` AND user_id = $3`
		args = append(args, *userID)
	}
	query += ` GROUP BY user_id, date`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum reportable overtime: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]float64)
	for rows.Next() {
		var uid string
		var day time.Time
		var hours float64
		if err := rows.Scan(&uid, &day, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan overtime sum: %w", err)
		}
		sums[uid+"|"+day.Format("2006-01-02")] = hours
	}

	return sums, rows.Err()
}
