package loader

import (
	"context"
	"fmt"
	"log/slog"

	"fashionetl/internal/config"
	"fashionetl/internal/db"
	"fashionetl/internal/etlerr"
	"fashionetl/internal/model"
	"fashionetl/internal/repository"
)

// PostgresSink fully replaces the rows of Table on every write.
type PostgresSink struct {
	DSN   string
	Table string
}

func NewPostgresSink(cfg config.Postgres) *PostgresSink {
	return &PostgresSink{DSN: cfg.DSN(), Table: cfg.Table}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Write(ctx context.Context, table model.Table) error {
	n, err := s.write(ctx, table)
	if err != nil {
		err = etlerr.Sink(s.Name(), err)
		slog.Error("failed to write postgres, check that the server is running and the connection settings", "table", s.Table, "err", err)
		return err
	}
	slog.Info("postgres written", "table", s.Table, "rows", n)
	return nil
}

func (s *PostgresSink) write(ctx context.Context, table model.Table) (int64, error) {
	conn, err := db.NewPgx(ctx, s.DSN)
	if err != nil {
		return 0, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	repo := &repository.ProductRepository{DB: conn}
	if err := repo.EnsureTable(ctx, s.Table); err != nil {
		return 0, fmt.Errorf("create table %s: %w", s.Table, err)
	}
	return repo.ReplaceAll(ctx, s.Table, table.Records)
}
