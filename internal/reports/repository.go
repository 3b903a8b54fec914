package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for saved reports.
type Repository interface {
	Insert(ctx context.Context, r Report) (int64, error)
	ListByUser(ctx context.Context, username string) ([]Report, error)
	DeleteByUser(ctx context.Context, username string) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert appends one immutable report row and returns its id.
func (r *PGRepository) Insert(ctx context.Context, report Report) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reports (username, date, total_amount, total_gst, grand_total)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		report.Username, report.Date, report.TotalAmount, report.TotalGST, report.GrandTotal).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListByUser returns a user's reports newest first. A user with no saved
// reports gets an empty slice, not an error.
func (r *PGRepository) ListByUser(ctx context.Context, username string) ([]Report, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, date, total_amount, total_gst, grand_total
		 FROM reports WHERE username = $1 ORDER BY id DESC`,
		username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]Report, 0)
	for rows.Next() {
		var report Report
		if err := rows.Scan(&report.ID, &report.Username, &report.Date,
			&report.TotalAmount, &report.TotalGST, &report.GrandTotal); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// DeleteByUser removes every report owned by username and reports the
// count. Clearing an empty history succeeds with zero deletions.
func (r *PGRepository) DeleteByUser(ctx context.Context, username string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE username = $1`, username)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
