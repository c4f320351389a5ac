package scraper

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"aqar_scraper/config"
	"aqar_scraper/models"
)

// PropertyFinderHandler extracts listing cards from Property Finder search
// pages. Unlike Bayut, every field has its own labelled node, and the detail
// badges spell the unit out ("3 Beds", "150 m²"), so the adapter maps them
// down to the bare value before handing off.
type PropertyFinderHandler struct {
	cfg *config.SiteConfig
}

func NewPropertyFinderHandler(cfg *config.SiteConfig) *PropertyFinderHandler {
	return &PropertyFinderHandler{cfg: cfg}
}

func (h *PropertyFinderHandler) ID() string {
	return h.cfg.ID
}

func (h *PropertyFinderHandler) ExtractPage(doc *goquery.Document) []models.RawListing {
	var listings []models.RawListing

	doc.Find(h.sel("card")).Each(func(i int, card *goquery.Selection) {
		listing := models.RawListing{
			Source:       h.cfg.ID,
			Title:        cardText(card, h.sel("title")),
			PropertyType: cardText(card, h.sel("property_type")),
			Price:        cardText(card, h.sel("price")),
			Location:     cardText(card, h.sel("location")),
			Area:         cardText(card, h.sel("area")),
			Bedrooms:     leadingToken(cardText(card, h.sel("bedrooms"))),
			Bathrooms:    leadingToken(cardText(card, h.sel("bathrooms"))),
			DownPayment:  cardText(card, h.sel("down_payment")),
		}

		if href, ok := card.Find(h.sel("link")).Attr("href"); ok {
			listing.Link = absoluteLink(h.cfg.LinkBase, href)
		}

		if listing.Title == "" && listing.Price == "" && listing.Location == "" {
			log.Printf("%s: skipping card %d, no listing fields found", h.cfg.ID, i)
			return
		}

		listings = append(listings, listing)
	})

	return listings
}

func (h *PropertyFinderHandler) sel(name string) string {
	return h.cfg.Selectors[name]
}

// leadingToken keeps the value part of a labelled badge: "3 Beds" -> "3",
// "Studio" -> "Studio".
func leadingToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	if strings.EqualFold(fields[0], "studio") {
		return "Studio"
	}
	return fields[0]
}
