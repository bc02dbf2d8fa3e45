package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"fashionetl/internal/model"
)

var productColumns = []string{"title", "price", "rating", "colors", "size", "gender", "timestamp"}

// ProductRepository owns the clean product table. The table name is chosen
// by the caller and may be schema qualified.
type ProductRepository struct {
	DB *pgx.Conn
}

func tableIdentifier(table string) pgx.Identifier {
	return pgx.Identifier(strings.Split(table, "."))
}

func (r *ProductRepository) EnsureTable(ctx context.Context, table string) error {
	_, err := r.DB.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			title VARCHAR(255),
			price FLOAT,
			rating FLOAT,
			colors INTEGER,
			size VARCHAR(50),
			gender VARCHAR(20),
			timestamp VARCHAR(50)
		)
	`, tableIdentifier(table).Sanitize()))
	return err
}

// ReplaceAll deletes every row of table and copies records in, all inside
// one transaction.
func (r *ProductRepository) ReplaceAll(ctx context.Context, table string, records []model.CleanRecord) (int64, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	// no-op once committed
	defer tx.Rollback(ctx)

	ident := tableIdentifier(table)
	if _, err := tx.Exec(ctx, "DELETE FROM "+ident.Sanitize()); err != nil {
		return 0, fmt.Errorf("delete old rows: %w", err)
	}

	n, err := tx.CopyFrom(ctx, ident, productColumns, pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
		p := records[i]
		return []any{p.Title, p.Price, p.Rating, p.Colors, p.Size, p.Gender, p.Timestamp}, nil
	}))
	if err != nil {
		return 0, fmt.Errorf("insert rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (r *ProductRepository) List(ctx context.Context, table string) ([]model.CleanRecord, error) {
	rows, err := r.DB.Query(ctx, fmt.Sprintf(`
		SELECT title, price, rating, colors, size, gender, timestamp
		FROM %s
		ORDER BY id
	`, tableIdentifier(table).Sanitize()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.CleanRecord
	for rows.Next() {
		var p model.CleanRecord
		if err := rows.Scan(&p.Title, &p.Price, &p.Rating, &p.Colors, &p.Size, &p.Gender, &p.Timestamp); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
