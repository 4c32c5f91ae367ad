package points

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists workers and point awards.
type Repository interface {
	ListEligibleWorkers(ctx context.Context) ([]Worker, error)
	FindWorkerByMember(ctx context.Context, memberID string) (Worker, error)
	MemberExists(ctx context.Context, memberID string) (bool, error)
	AddPoints(ctx context.Context, workerID, amount int64) error
	InsertAward(ctx context.Context, award PointAward) error
	ListAwards(ctx context.Context, period string) ([]PointAward, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const workerColumns = `id, member_id, name, is_worker, monthly_point_salary, point_balance, created_at, updated_at`

func (r *repository) ListEligibleWorkers(ctx context.Context) ([]Worker, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+workerColumns+` FROM workers
WHERE is_worker AND monthly_point_salary > 0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var workers []Worker
	for rows.Next() {
		var w Worker
		if err := rows.Scan(&w.ID, &w.MemberID, &w.Name, &w.IsWorker, &w.MonthlyPointSalary, &w.PointBalance, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (r *repository) FindWorkerByMember(ctx context.Context, memberID string) (Worker, error) {
	var w Worker
	err := r.pool.QueryRow(ctx, `SELECT `+workerColumns+` FROM workers WHERE member_id=$1`, memberID).
		Scan(&w.ID, &w.MemberID, &w.Name, &w.IsWorker, &w.MonthlyPointSalary, &w.PointBalance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Worker{}, ErrWorkerNotFound
		}
		return Worker{}, err
	}
	return w, nil
}

func (r *repository) MemberExists(ctx context.Context, memberID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM members WHERE id=$1)`, memberID).Scan(&exists)
	return exists, err
}

func (r *repository) AddPoints(ctx context.Context, workerID, amount int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE workers SET point_balance = point_balance + $2, updated_at = NOW() WHERE id=$1`, workerID, amount)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrWorkerNotFound
	}
	return nil
}

func (r *repository) InsertAward(ctx context.Context, award PointAward) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO point_awards (worker_id, member_id, amount, reason, period, awarded_by)
VALUES ($1,$2,$3,$4,$5,$6)`, award.WorkerID, award.MemberID, award.Amount, award.Reason, award.Period, award.AwardedBy)
	return err
}

func (r *repository) ListAwards(ctx context.Context, period string) ([]PointAward, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, worker_id, member_id, amount, reason, period, awarded_by, awarded_at
FROM point_awards WHERE ($1 = '' OR period = $1) ORDER BY id DESC`, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var awards []PointAward
	for rows.Next() {
		var a PointAward
		if err := rows.Scan(&a.ID, &a.WorkerID, &a.MemberID, &a.Amount, &a.Reason, &a.Period, &a.AwardedBy, &a.AwardedAt); err != nil {
			return nil, err
		}
		awards = append(awards, a)
	}
	return awards, rows.Err()
}
