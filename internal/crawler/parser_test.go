package crawler

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"fashionetl/internal/model"
	"fashionetl/internal/observability"
)

var capturedAt = time.Date(2025, time.March, 3, 10, 30, 0, 0, time.UTC)

func card(inner string) string {
	return `<div class="collection-card"><div class="product-details">` + inner + `</div></div>`
}

const fullCard = `
<h3 class="product-title">T-shirt 2</h3>
<div class="price-container"><span class="price">$102.15</span></div>
<p style="font-size: 14px; color: #777;">Rating: ⭐ 3.9 / 5</p>
<p style="font-size: 14px; color: #777;">3 Colors</p>
<p style="font-size: 14px; color: #777;">Size: M</p>
<p style="font-size: 14px; color: #777;">Gender: Women</p>`

func page(cards ...string) string {
	return `<!DOCTYPE html><html><body><div class="collection-grid">` + strings.Join(cards, "\n") + `</div></body></html>`
}

func TestParseCardsFullCard(t *testing.T) {
	products, err := ParseCards(strings.NewReader(page(card(fullCard))), capturedAt)
	require.NoError(t, err)
	require.Equal(t, []model.RawProduct{{
		Title:     "T-shirt 2",
		Price:     "102.15",
		Rating:    "3.9",
		Colors:    "3",
		Size:      "M",
		Gender:    "Women",
		Timestamp: "2025-03-03T10:30:00Z",
	}}, products)
}

func TestParseCardsMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		inner  string
		expect model.RawProduct
	}{
		{
			name:  "plain rating text, no price",
			inner: `<h3 class="product-title">Jacket</h3><p>Rating: 4.5 / 5</p><p>5 Colors</p><p>Size: XL</p><p>Gender: Men</p>`,
			expect: model.RawProduct{
				Title: "Jacket", Price: model.NotAvailable, Rating: "4.5", Colors: "5", Size: "XL", Gender: "Men",
			},
		},
		{
			name:  "unknown title and invalid rating",
			inner: `<p class="price">Price Unavailable</p><p>Rating: ⭐ Invalid Rating / 5</p><p>8 Colors</p><p>Size: S</p><p>Gender: Unisex</p>`,
			expect: model.RawProduct{
				Title: model.UnknownTitle, Price: model.NotAvailable, Rating: model.InvalidRating, Colors: "8", Size: "S", Gender: "Unisex",
			},
		},
		{
			name:  "only a title",
			inner: `<h3 class="product-title">Pants 9</h3>`,
			expect: model.RawProduct{
				Title: "Pants 9", Price: model.NotAvailable, Rating: model.InvalidRating,
				Colors: model.NotAvailable, Size: model.NotAvailable, Gender: model.NotAvailable,
			},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			products, err := ParseCards(strings.NewReader(page(card(test.inner))), capturedAt)
			require.NoError(t, err)
			require.Len(t, products, 1)
			test.expect.Timestamp = "2025-03-03T10:30:00Z"
			require.Equal(t, test.expect, products[0])
		})
	}
}

func TestParseCardsKeepsPageOrder(t *testing.T) {
	products, err := ParseCards(strings.NewReader(page(
		card(`<h3 class="product-title">A</h3>`),
		card(`<h3 class="product-title">B</h3>`),
		card(`<h3 class="product-title">C</h3>`),
	)), capturedAt)
	require.NoError(t, err)
	require.Len(t, products, 3)
	require.Equal(t, "A", products[0].Title)
	require.Equal(t, "C", products[2].Title)
}

func TestParseCardsNoCards(t *testing.T) {
	products, err := ParseCards(strings.NewReader(`<html><body><p>nothing here</p></body></html>`), capturedAt)
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestParseCardsSkipsBrokenCard(t *testing.T) {
	saved := cardFields
	t.Cleanup(func() { cardFields = saved })
	cardFields = append([]func(*goquery.Selection, *model.RawProduct){
		func(c *goquery.Selection, _ *model.RawProduct) {
			if c.Find("h3.product-title").Text() == "B" {
				panic("malformed card")
			}
		},
	}, saved...)

	skipped := testutil.ToFloat64(observability.CardsTotal.WithLabelValues("skipped"))

	products, err := ParseCards(strings.NewReader(page(
		card(`<h3 class="product-title">A</h3>`),
		card(`<h3 class="product-title">B</h3>`),
		card(`<h3 class="product-title">C</h3>`),
	)), capturedAt)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "A", products[0].Title)
	require.Equal(t, "C", products[1].Title)
	require.Equal(t, skipped+1, testutil.ToFloat64(observability.CardsTotal.WithLabelValues("skipped")))
}
