package scraper

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"aqar_scraper/config"
	"aqar_scraper/models"
)

// BayutHandler extracts listing cards from Bayut search result pages.
// Bayut renders property type, bedrooms and bathrooms as an ordered run of
// identical badge spans, and the down payment as a standalone badge that
// may carry either an amount or an installment duration phrase.
type BayutHandler struct {
	cfg *config.SiteConfig
}

func NewBayutHandler(cfg *config.SiteConfig) *BayutHandler {
	return &BayutHandler{cfg: cfg}
}

func (h *BayutHandler) ID() string {
	return h.cfg.ID
}

func (h *BayutHandler) ExtractPage(doc *goquery.Document) []models.RawListing {
	var listings []models.RawListing

	doc.Find(h.sel("card")).Each(func(i int, card *goquery.Selection) {
		listing := models.RawListing{
			Source:   h.cfg.ID,
			Title:    cardText(card, h.sel("title")),
			Location: cardText(card, h.sel("location")),
		}

		listing.Price = cardText(card, h.sel("price"))
		if listing.Price == "" {
			listing.Price = cardText(card, h.sel("price_fallback"))
		}

		listing.Area = cardText(card, h.sel("area"))
		if listing.Area == "" {
			listing.Area = cardText(card, h.sel("area_fallback"))
		}

		badges := card.Find(h.sel("badges"))
		listing.PropertyType = strings.TrimSpace(badges.Eq(0).Text())
		listing.Bedrooms = strings.TrimSpace(badges.Eq(1).Text())
		listing.Bathrooms = strings.TrimSpace(badges.Eq(2).Text())

		listing.DownPayment = cardText(card, h.sel("down_payment"))

		if href, ok := card.Find(h.sel("link")).Attr("href"); ok {
			listing.Link = absoluteLink(h.cfg.LinkBase, href)
		}

		// The card list selector can match decorative list items; a node
		// with no title, price or location is not a listing.
		if listing.Title == "" && listing.Price == "" && listing.Location == "" {
			log.Printf("%s: skipping card %d, no listing fields found", h.cfg.ID, i)
			return
		}

		listings = append(listings, listing)
	})

	return listings
}

func (h *BayutHandler) sel(name string) string {
	return h.cfg.Selectors[name]
}

// cardText returns the trimmed text of the first selector match inside the
// card, or "" when the selector finds nothing. Missing sub-elements never
// abort a card.
func cardText(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(card.Find(selector).First().Text())
}

func absoluteLink(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return base + href
}
