package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"fashionetl/internal/etlerr"
	"fashionetl/internal/model"
)

// Archiver receives the path of a freshly written CSV file.
type Archiver interface {
	Archive(ctx context.Context, path string) error
}

type CSVSink struct {
	Path string
	// Archiver is optional; a failed upload is logged and does not fail the sink.
	Archiver Archiver
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Write(ctx context.Context, table model.Table) error {
	if err := WriteCSV(table, s.Path); err != nil {
		err = etlerr.Sink(s.Name(), err)
		slog.Error("failed to write csv", "path", s.Path, "err", err)
		return err
	}
	slog.Info("csv written", "path", s.Path, "rows", table.Len())

	if s.Archiver != nil {
		if err := s.Archiver.Archive(ctx, s.Path); err != nil {
			slog.Warn("failed to archive csv", "path", s.Path, "err", err)
		}
	}
	return nil
}

type csvFile interface {
	io.Writer
	Sync() error
	Close() error
}

var createFile = func(path string) (csvFile, error) { return os.Create(path) }

// WriteCSV replaces path with a header row followed by one row per record.
func WriteCSV(table model.Table, path string) (err error) {
	f, err := createFile(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	bufw := bufio.NewWriter(f)
	w := csv.NewWriter(bufw)
	if err := w.Write(model.Columns); err != nil {
		return err
	}
	for _, r := range table.Records {
		if err := w.Write(r.Strings()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := bufw.Flush(); err != nil {
		return err
	}
	return f.Sync()
}
