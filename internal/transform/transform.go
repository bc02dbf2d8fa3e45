package transform

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"fashionetl/internal/etlerr"
	"fashionetl/internal/model"
)

// DefaultExchangeRate converts source USD prices to rupiah.
const DefaultExchangeRate = 16000

type Stage string

const (
	StageTitle      Stage = "title"
	StagePrice      Stage = "price"
	StageRating     Stage = "rating"
	StageColors     Stage = "colors"
	StageSizeGender Stage = "size_gender"
	StageDuplicates Stage = "duplicates"
)

type StageResult struct {
	Stage     Stage
	Dropped   int
	Remaining int
}

// Stats describes how many rows each cleaning stage removed.
type Stats struct {
	Input  int
	Stages []StageResult
}

func (s Stats) Output() int {
	if len(s.Stages) == 0 {
		return s.Input
	}
	return s.Stages[len(s.Stages)-1].Remaining
}

var (
	decimalPrice = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)
	firstDecimal = regexp.MustCompile(`\d+\.?\d*`)
	firstInteger = regexp.MustCompile(`\d+`)
)

const maxRating = 5

// row carries a raw product through the stages while its typed fields are
// filled in.
type row struct {
	raw model.RawProduct
	rec model.CleanRecord
}

func Transform(raw []model.RawProduct, rate float64) (model.Table, error) {
	table, _, err := TransformWithStats(raw, rate)
	return table, err
}

// TransformWithStats cleans raw into a table. It never returns a partial
// table: on any failure the table is empty and err says why.
func TransformWithStats(raw []model.RawProduct, rate float64) (table model.Table, stats Stats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = etlerr.Internal("transform", fmt.Errorf("%v", r))
			slog.Error("transform failed", "err", err)
			table = model.Table{}
		}
	}()

	stats.Input = len(raw)
	if len(raw) == 0 {
		slog.Info("no data to transform")
		return model.Table{}, stats, nil
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		err = etlerr.Validation("transform", fmt.Errorf("invalid exchange rate %v", rate))
		slog.Error("transform failed", "err", err)
		return model.Table{}, stats, err
	}

	slog.Info("transform started", "rows", len(raw))

	rows := make([]*row, len(raw))
	for i, p := range raw {
		rows[i] = &row{raw: p}
	}

	seen := make(map[model.CleanRecord]struct{}, len(rows))
	stages := []struct {
		stage Stage
		keep  func(*row) bool
	}{
		{StageTitle, keepTitle},
		{StagePrice, func(r *row) bool { return keepPrice(r, rate) }},
		{StageRating, keepRating},
		{StageColors, keepColors},
		{StageSizeGender, keepSizeGender},
		{StageDuplicates, func(r *row) bool {
			r.rec.Timestamp = r.raw.Timestamp
			if _, dup := seen[r.rec]; dup {
				return false
			}
			seen[r.rec] = struct{}{}
			return true
		}},
	}

	for _, s := range stages {
		before := len(rows)
		rows = filter(rows, s.keep)
		stats.Stages = append(stats.Stages, StageResult{
			Stage:     s.stage,
			Dropped:   before - len(rows),
			Remaining: len(rows),
		})
		slog.Info("transform stage", "stage", s.stage, "rows", len(rows))
	}

	records := make([]model.CleanRecord, len(rows))
	for i, r := range rows {
		records[i] = r.rec
	}

	slog.Info("transform finished", "rows", len(records))
	return model.Table{Records: records}, stats, nil
}

func filter(rows []*row, keep func(*row) bool) []*row {
	out := rows[:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func keepTitle(r *row) bool {
	title := r.raw.Title
	if title == model.UnknownTitle || strings.TrimSpace(title) == "" {
		return false
	}
	r.rec.Title = title
	return true
}

func keepPrice(r *row, rate float64) bool {
	v, ok := ParsePrice(r.raw.Price)
	if !ok {
		return false
	}
	r.rec.Price = v * rate
	return true
}

func keepRating(r *row) bool {
	v, ok := ParseRating(r.raw.Rating)
	if !ok {
		return false
	}
	r.rec.Rating = v
	return true
}

func keepColors(r *row) bool {
	v, ok := ParseColors(r.raw.Colors)
	if !ok {
		return false
	}
	r.rec.Colors = v
	return true
}

func keepSizeGender(r *row) bool {
	r.rec.Size = stripLabel(r.raw.Size, "Size:")
	r.rec.Gender = stripLabel(r.raw.Gender, "Gender:")
	return r.rec.Size != model.NotAvailable && r.rec.Gender != model.NotAvailable
}

// ParsePrice reads a plain decimal amount, optionally prefixed with "$".
// Zero and negative amounts are rejected.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if !decimalPrice.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ParseRating takes the first number found anywhere in s, "Rating: 4.5 / 5"
// gives 4.5.
func ParseRating(s string) (float64, bool) {
	if s == model.InvalidRating {
		return 0, false
	}
	m := firstDecimal.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v > maxRating {
		return 0, false
	}
	return v, true
}

// ParseColors takes the first integer found anywhere in s, "Colors 3" gives 3.
func ParseColors(s string) (int, bool) {
	if s == model.NotAvailable {
		return 0, false
	}
	m := firstInteger.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

func stripLabel(s, label string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, label, ""))
}
