package crawler

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"fashionetl/internal/etlerr"
	"fashionetl/internal/model"
	"fashionetl/internal/observability"
)

const cardSelector = "div.collection-card"

var ratingNumber = regexp.MustCompile(`\d+\.?\d*`)

// ParseCards extracts every product card from a listing page. Cards that
// cannot be read are skipped; capturedAt is stamped on the rest.
func ParseCards(r io.Reader, capturedAt time.Time) ([]model.RawProduct, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, etlerr.Parse("read listing", err)
	}

	ts := capturedAt.Format(time.RFC3339Nano)

	var products []model.RawProduct
	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		p, err := parseCard(card)
		if err != nil {
			slog.Warn("skipping product card", "card", i, "err", err)
			observability.CardsTotal.WithLabelValues("skipped").Inc()
			return
		}
		p.Timestamp = ts
		products = append(products, p)
		observability.CardsTotal.WithLabelValues("extracted").Inc()
	})

	return products, nil
}

func parseCard(card *goquery.Selection) (p model.RawProduct, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = etlerr.Parse("product card", fmt.Errorf("%v", r))
		}
	}()

	for _, read := range cardFields {
		read(card, &p)
	}
	return p, nil
}

// cardFields fill one RawProduct field each, in column order.
var cardFields = []func(*goquery.Selection, *model.RawProduct){
	func(c *goquery.Selection, p *model.RawProduct) { p.Title = title(c) },
	func(c *goquery.Selection, p *model.RawProduct) { p.Price = price(c) },
	func(c *goquery.Selection, p *model.RawProduct) { p.Rating = rating(c) },
	func(c *goquery.Selection, p *model.RawProduct) { p.Colors = labelled(c, "Colors") },
	func(c *goquery.Selection, p *model.RawProduct) { p.Size = labelled(c, "Size:") },
	func(c *goquery.Selection, p *model.RawProduct) { p.Gender = labelled(c, "Gender:") },
}

func title(card *goquery.Selection) string {
	s := card.Find("h3.product-title").First()
	if s.Length() == 0 {
		return model.UnknownTitle
	}
	return strings.TrimSpace(s.Text())
}

func price(card *goquery.Selection) string {
	s := card.Find("span.price").First()
	if s.Length() == 0 {
		return model.NotAvailable
	}
	return strings.TrimSpace(strings.Replace(strings.TrimSpace(s.Text()), "$", "", 1))
}

// rating reads "Rating: ⭐ 4.5 / 5" as "4.5".
func rating(card *goquery.Selection) string {
	text, ok := paragraph(card, "Rating")
	if !ok {
		return model.InvalidRating
	}
	text, _, _ = strings.Cut(text, "/")
	n := ratingNumber.FindString(strings.Replace(text, "Rating:", "", 1))
	if n == "" {
		return model.InvalidRating
	}
	return n
}

// labelled returns the text of the first paragraph mentioning label, with
// the label removed, or the N/A placeholder.
func labelled(card *goquery.Selection, label string) string {
	text, ok := paragraph(card, label)
	if !ok {
		return model.NotAvailable
	}
	return strings.TrimSpace(strings.ReplaceAll(text, label, ""))
}

func paragraph(card *goquery.Selection, marker string) (string, bool) {
	var (
		text  string
		found bool
	)
	card.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := s.Text()
		if strings.Contains(t, marker) {
			text, found = t, true
			return false
		}
		return true
	})
	return text, found
}
