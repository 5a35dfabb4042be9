package leave

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, req *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	UpdateStatus(ctx context.Context, req *LeaveRequest) error
	FindAllByTeam(ctx context.Context, teamID string, status string) ([]LeaveRequest, error)
	FindAllByUser(ctx context.Context, userID string) ([]LeaveRequest, error)
	FindApprovedOverlapping(ctx context.Context, teamID string, start, end string, excludeID *string) ([]LeaveRequest, error)

	HasApprovedOnDate(ctx context.Context, userID string, date string) (bool, error)

	GetBalance(ctx context.Context, userID string, p Period) (SemiAnnualBalance, error)
	CommitBalance(ctx context.Context, userID string, p Period, vacationDelta, weekendDelta int) (SemiAnnualBalance, error)
	ResetBalance(ctx context.Context, userID string, p Period) error

	AcquireTeamLock(ctx context.Context, teamID string) error
	AcquireBalanceLock(ctx context.Context, userID string, p Period) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository bound to an open database/sql transaction.
// Concurrency-critical statements (locks, the balance upsert, the status
// flip) run on the transaction; plain reads outside a transaction go
// through gorm.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, req *LeaveRequest) error {
	if r.tx != nil {
		query := `
        INSERT INTO leave_requests (
            id, user_id, team_id, leave_type, start_date, end_date, business_days,
            reason, category, semi_annual_period, is_weekend_leave,
            requires_management_approval, status, created_by, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
    `
		_, err := r.tx.ExecContext(
			ctx, query,
			req.ID, req.UserID, req.TeamID, req.LeaveType, req.StartDate, req.EndDate,
			req.BusinessDays, req.Reason, req.Category, req.SemiAnnualPeriod,
			req.IsWeekendLeave, req.RequiresManagementApproval, req.Status, req.CreatedBy,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate row-locks the request inside the ambient transaction so
// two concurrent decisions on the same request serialize on the row.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	if r.tx == nil {
		return nil, errors.New("leave: FindByIDForUpdate requires a transaction")
	}

	query := `
SELECT
	id, user_id, team_id, leave_type, start_date, end_date, business_days,
	COALESCE(reason, ''), category, semi_annual_period, is_weekend_leave,
	requires_management_approval, status, created_by, decided_by, decided_at, admin_notes
FROM leave_requests
WHERE id = $1 AND deleted_at IS NULL
FOR UPDATE
`
	var req LeaveRequest
	err := r.tx.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.UserID, &req.TeamID, &req.LeaveType,
		&req.StartDate, &req.EndDate, &req.BusinessDays,
		&req.Reason, &req.Category, &req.SemiAnnualPeriod,
		&req.IsWeekendLeave, &req.RequiresManagementApproval,
		&req.Status, &req.CreatedBy, &req.DecidedBy, &req.DecidedAt, &req.AdminNotes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) UpdateStatus(ctx context.Context, req *LeaveRequest) error {
	if r.tx != nil {
		query := `
UPDATE leave_requests
SET
	status = $2,
	decided_by = $3,
	decided_at = $4,
	admin_notes = $5,
	updated_at = NOW()
WHERE id = $1
`
		_, err := r.tx.ExecContext(ctx, query,
			req.ID, req.Status, req.DecidedBy, req.DecidedAt, req.AdminNotes,
		)
		return err
	}
	return r.db.WithContext(ctx).Model(&LeaveRequest{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"status":      req.Status,
			"decided_by":  req.DecidedBy,
			"decided_at":  req.DecidedAt,
			"admin_notes": req.AdminNotes,
		}).Error
}

func (r *repository) FindAllByTeam(ctx context.Context, teamID string, status string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	q := r.db.WithContext(ctx).Where("team_id = ?", teamID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) FindAllByUser(ctx context.Context, userID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// FindApprovedOverlapping returns every approved request on the team whose
// date range intersects [start, end]. Inside a transaction it reads through
// the transaction so the capacity recheck sees a consistent snapshot.
func (r *repository) FindApprovedOverlapping(ctx context.Context, teamID string, start, end string, excludeID *string) ([]LeaveRequest, error) {
	if r.tx != nil {
		query := `
SELECT id, user_id, team_id, leave_type, start_date, end_date, business_days, status
FROM leave_requests
WHERE team_id = $1
	AND status = $2
	AND start_date <= $4
	AND end_date >= $3
	AND deleted_at IS NULL
	AND ($5::uuid IS NULL OR id <> $5::uuid)
`
		rows, err := r.tx.QueryContext(ctx, query, teamID, StatusApproved, start, end, excludeID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var requests []LeaveRequest
		for rows.Next() {
			var req LeaveRequest
			if err := rows.Scan(
				&req.ID, &req.UserID, &req.TeamID, &req.LeaveType,
				&req.StartDate, &req.EndDate, &req.BusinessDays, &req.Status,
			); err != nil {
				return nil, err
			}
			requests = append(requests, req)
		}
		return requests, rows.Err()
	}

	var requests []LeaveRequest
	q := r.db.WithContext(ctx).
		Where("team_id = ? AND status = ?", teamID, StatusApproved).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// HasApprovedOnDate reports whether the user has an approved leave covering
// the given date. Consumed by the attendance module on clock-in.
func (r *repository) HasApprovedOnDate(ctx context.Context, userID string, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&LeaveRequest{}).
		Where("user_id = ? AND status = ?", userID, StatusApproved).
		Where("start_date <= ? AND end_date >= ?", date, date).
		Count(&count).Error
	return count > 0, err
}

// GetBalance returns the balance row for (user, period), or a zero-valued
// snapshot when none exists yet.
func (r *repository) GetBalance(ctx context.Context, userID string, p Period) (SemiAnnualBalance, error) {
	var b SemiAnnualBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND half = ?", userID, p.Year, p.Half).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b = SemiAnnualBalance{Year: p.Year, Half: p.Half}
		return b, nil
	}
	if err != nil {
		return SemiAnnualBalance{}, err
	}
	return b, nil
}

// CommitBalance applies counter deltas atomically with an upsert and returns
// the resulting counters. Negative deltas reverse an earlier commit. Cap and
// underflow checks happen in the service on the returned values, inside the
// same transaction, so an over-commit rolls back.
func (r *repository) CommitBalance(ctx context.Context, userID string, p Period, vacationDelta, weekendDelta int) (SemiAnnualBalance, error) {
	if r.tx == nil {
		return SemiAnnualBalance{}, errors.New("leave: CommitBalance requires a transaction")
	}

	query := `
INSERT INTO semi_annual_balances (
	id, user_id, year, half, vacation_days_used, weekend_leaves_used, created_at, updated_at
) VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, NOW(), NOW())
ON CONFLICT (user_id, year, half) DO UPDATE
SET
	vacation_days_used = semi_annual_balances.vacation_days_used + EXCLUDED.vacation_days_used,
	weekend_leaves_used = semi_annual_balances.weekend_leaves_used + EXCLUDED.weekend_leaves_used,
	updated_at = NOW()
RETURNING vacation_days_used, weekend_leaves_used
`
	b := SemiAnnualBalance{Year: p.Year, Half: p.Half}
	err := r.tx.QueryRowContext(ctx, query, userID, p.Year, p.Half, vacationDelta, weekendDelta).
		Scan(&b.VacationDaysUsed, &b.WeekendLeavesUsed)
	if err != nil {
		return SemiAnnualBalance{}, err
	}
	return b, nil
}

func (r *repository) ResetBalance(ctx context.Context, userID string, p Period) error {
	return r.db.WithContext(ctx).Model(&SemiAnnualBalance{}).
		Where("user_id = ? AND year = ? AND half = ?", userID, p.Year, p.Half).
		Updates(map[string]any{
			"vacation_days_used":  0,
			"weekend_leaves_used": 0,
		}).Error
}

// AcquireTeamLock serializes approval decisions per team for the duration of
// the ambient transaction. Advisory locks release automatically at
// commit/rollback.
func (r *repository) AcquireTeamLock(ctx context.Context, teamID string) error {
	return r.advisoryLock(ctx, "leave:team:"+teamID)
}

// AcquireBalanceLock serializes balance commits per (user, period).
func (r *repository) AcquireBalanceLock(ctx context.Context, userID string, p Period) error {
	return r.advisoryLock(ctx, "leave:balance:"+userID+":"+p.String())
}

func (r *repository) advisoryLock(ctx context.Context, key string) error {
	if r.tx == nil {
		return errors.New("leave: advisory lock requires a transaction")
	}
	_, err := r.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
	return err
}
