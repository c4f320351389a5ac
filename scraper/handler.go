package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"aqar_scraper/config"
	"aqar_scraper/models"
)

// Handler extracts raw listings from one source's page markup. Selector
// values come from the site config; a handler only knows the structural
// conventions of its source (badge ordering, relative links, label text).
type Handler interface {
	ID() string
	ExtractPage(doc *goquery.Document) []models.RawListing
}

func NewHandler(siteCfg *config.SiteConfig) Handler {
	switch siteCfg.Handler {
	case "bayut":
		return NewBayutHandler(siteCfg)
	case "propertyfinder":
		return NewPropertyFinderHandler(siteCfg)
	default:
		return NewBayutHandler(siteCfg)
	}
}
