package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"fashionetl/internal/model"
)

// RunRepository keeps one row per pipeline run.
type RunRepository struct {
	DB    *sql.DB
	Table string
}

func (r *RunRepository) table() string {
	return pq.QuoteIdentifier(r.Table)
}

func (r *RunRepository) EnsureTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			extracted INTEGER NOT NULL,
			cleaned INTEGER NOT NULL,
			sinks_ok INTEGER NOT NULL,
			sinks_total INTEGER NOT NULL,
			outcome VARCHAR(20) NOT NULL
		)
	`, r.table()))
	return err
}

func (r *RunRepository) Save(ctx context.Context, run model.Run) error {
	_, err := r.DB.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s
		(id, started_at, finished_at, extracted, cleaned, sinks_ok, sinks_total, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.table()), run.ID, run.StartedAt, run.FinishedAt, run.Extracted, run.Cleaned, run.SinksOK, run.SinksTotal, run.Outcome)
	return err
}

// Recent returns up to limit runs, newest first.
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]model.Run, error) {
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, started_at, finished_at, extracted, cleaned, sinks_ok, sinks_total, outcome
		FROM %s
		ORDER BY started_at DESC
		LIMIT $1
	`, r.table()), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Extracted, &run.Cleaned, &run.SinksOK, &run.SinksTotal, &run.Outcome); err != nil {
			return nil, err
		}
		list = append(list, run)
	}
	return list, rows.Err()
}
