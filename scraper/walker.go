package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"aqar_scraper/config"
	"aqar_scraper/httputil"
	"aqar_scraper/models"
)

// Walker drives one handler across a paginated source. Pages are fetched
// strictly one at a time with a fixed courtesy delay in between; the walk
// ends at the first page that yields no listings or at the configured
// ceiling, whichever comes first.
type Walker struct {
	client  *http.Client
	site    *config.SiteConfig
	handler Handler
}

func NewWalker(client *http.Client, site *config.SiteConfig, handler Handler) *Walker {
	return &Walker{client: client, site: site, handler: handler}
}

// Walk collects raw listings from all pages. It returns the listings, the
// number of pages that yielded listings, and an error only when the context
// is cancelled. A failed page is handled per the site's on_page_error
// policy: "stop" ends the walk (a broken source mid-run should not produce
// a half-empty batch that looks complete), "skip" moves on to the next page.
func (w *Walker) Walk(ctx context.Context) ([]models.RawListing, int, error) {
	var all []models.RawListing
	pagesScraped := 0

	for page := 1; page <= w.site.MaxPages; page++ {
		if page > 1 {
			if err := w.delay(ctx); err != nil {
				return all, pagesScraped, err
			}
		}

		listings, err := w.fetchPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return all, pagesScraped, ctx.Err()
			}
			log.Printf("%s: page %d failed: %v", w.site.ID, page, err)
			if w.site.OnPageError == "skip" {
				continue
			}
			break
		}

		if len(listings) == 0 {
			log.Printf("%s: page %d yielded no listings, end of source", w.site.ID, page)
			break
		}

		all = append(all, listings...)
		pagesScraped++
		log.Printf("%s: page %d: %d listings (total: %d)", w.site.ID, page, len(listings), len(all))
	}

	return all, pagesScraped, nil
}

func (w *Walker) fetchPage(ctx context.Context, page int) ([]models.RawListing, error) {
	url := w.site.PageURL(page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", httputil.UserAgent())
	req.Header.Set("Accept-Language", "en")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d for %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	return w.handler.ExtractPage(doc), nil
}

func (w *Walker) delay(ctx context.Context) error {
	d := time.Duration(w.site.RateLimitMS) * time.Millisecond
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
