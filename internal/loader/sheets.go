package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"fashionetl/internal/config"
	"fashionetl/internal/etlerr"
	"fashionetl/internal/model"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// SheetsSink replaces the contents of the first sheet of a spreadsheet found
// by title, creating and link-sharing the spreadsheet when it does not exist.
type SheetsSink struct {
	CredentialsFile string
	Title           string

	newServices func(ctx context.Context) (*sheets.Service, *drive.Service, error)
}

func NewSheetsSink(cfg config.Sheets) *SheetsSink {
	return &SheetsSink{CredentialsFile: cfg.CredentialsFile, Title: cfg.Title}
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Write(ctx context.Context, table model.Table) error {
	if _, err := os.Stat(s.CredentialsFile); err != nil {
		err = etlerr.Sink(s.Name(), fmt.Errorf("credentials file %s: %w", s.CredentialsFile, err))
		slog.Error("sheets credentials not found, create a service account and download its key", "path", s.CredentialsFile, "err", err)
		return err
	}

	url, err := s.write(ctx, table)
	if err != nil {
		err = etlerr.Sink(s.Name(), err)
		slog.Error("failed to write google sheets", "title", s.Title, "err", err)
		return err
	}

	slog.Info("google sheets written", "url", url, "rows", table.Len())
	return nil
}

func (s *SheetsSink) write(ctx context.Context, table model.Table) (string, error) {
	newServices := s.newServices
	if newServices == nil {
		newServices = s.servicesFromCredentials
	}
	sheetsSvc, driveSvc, err := newServices(ctx)
	if err != nil {
		return "", fmt.Errorf("authenticate: %w", err)
	}

	id, err := s.openOrCreate(ctx, sheetsSvc, driveSvc)
	if err != nil {
		return "", err
	}

	ss, err := sheetsSvc.Spreadsheets.Get(id).
		Fields("spreadsheetUrl", "sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("get spreadsheet %s: %w", id, err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return "", errors.New("spreadsheet has no sheets")
	}
	rng := quoteSheet(ss.Sheets[0].Properties.Title)

	if _, err := sheetsSvc.Spreadsheets.Values.Clear(id, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear sheet: %w", err)
	}

	if err := appendRow(ctx, sheetsSvc, id, rng, model.Columns); err != nil {
		return "", fmt.Errorf("append header: %w", err)
	}
	for i, r := range table.Records {
		if err := appendRow(ctx, sheetsSvc, id, rng, r.Strings()); err != nil {
			return "", fmt.Errorf("append row %d: %w", i, err)
		}
	}

	return ss.SpreadsheetUrl, nil
}

func (s *SheetsSink) servicesFromCredentials(ctx context.Context) (*sheets.Service, *drive.Service, error) {
	opts := []option.ClientOption{
		option.WithCredentialsFile(s.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope),
	}
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	return sheetsSvc, driveSvc, nil
}

func (s *SheetsSink) openOrCreate(ctx context.Context, sheetsSvc *sheets.Service, driveSvc *drive.Service) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(s.Title), spreadsheetMimeType)
	found, err := driveSvc.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search spreadsheet %q: %w", s.Title, err)
	}
	if len(found.Files) > 0 {
		return found.Files[0].Id, nil
	}

	slog.Info("spreadsheet not found, creating it", "title", s.Title)
	created, err := sheetsSvc.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: s.Title},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create spreadsheet %q: %w", s.Title, err)
	}

	// anyone with the link may edit
	_, err = driveSvc.Permissions.Create(created.SpreadsheetId, &drive.Permission{
		Type: "anyone",
		Role: "writer",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("share spreadsheet %q: %w", s.Title, err)
	}
	return created.SpreadsheetId, nil
}

func appendRow(ctx context.Context, svc *sheets.Service, id, rng string, cells []string) error {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	_, err := svc.Spreadsheets.Values.Append(id, rng, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
