package model

import "strconv"

// Placeholders the extractor emits when a card field is missing or unreadable.
const (
	UnknownTitle  = "Unknown Product"
	NotAvailable  = "N/A"
	InvalidRating = "Invalid"
)

// RawProduct is one scraped card, every field still text.
type RawProduct struct {
	Title     string `json:"Title"`
	Price     string `json:"Price"`
	Rating    string `json:"Rating"`
	Colors    string `json:"Colors"`
	Size      string `json:"Size"`
	Gender    string `json:"Gender"`
	Timestamp string `json:"Timestamp"`
}

// CleanRecord is a validated, typed row of the clean table.
type CleanRecord struct {
	Title     string  `json:"Title"`
	Price     float64 `json:"Price"`
	Rating    float64 `json:"Rating"`
	Colors    int     `json:"Colors"`
	Size      string  `json:"Size"`
	Gender    string  `json:"Gender"`
	Timestamp string  `json:"Timestamp"`
}

// Columns is the fixed column order shared by every sink.
var Columns = []string{"Title", "Price", "Rating", "Colors", "Size", "Gender", "Timestamp"}

func (r CleanRecord) Strings() []string {
	return []string{
		r.Title,
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		strconv.FormatFloat(r.Rating, 'f', -1, 64),
		strconv.Itoa(r.Colors),
		r.Size,
		r.Gender,
		r.Timestamp,
	}
}

type Table struct {
	Records []CleanRecord
}

func (t Table) Len() int    { return len(t.Records) }
func (t Table) Empty() bool { return len(t.Records) == 0 }

// Head returns at most n leading records.
func (t Table) Head(n int) []CleanRecord {
	n = max(0, min(n, len(t.Records)))
	return t.Records[:n]
}
