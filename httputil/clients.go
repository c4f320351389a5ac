package httputil

import (
	"net/http"
	"net/url"
	"time"

	"aqar_scraper/config"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

type Clients struct {
	Scraping *http.Client // for target listing sites, optionally proxied
	API      *http.Client // for archive uploads and other direct calls
}

func NewClients(proxyCfg *config.ProxyConfig) *Clients {
	transport := http.DefaultTransport
	if proxyCfg != nil && proxyCfg.URL != "" {
		if proxyURL, err := url.Parse(proxyCfg.URL); err == nil {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	scraping := &http.Client{
		Timeout:   12 * time.Second,
		Transport: transport,
	}

	return &Clients{
		Scraping: scraping,
		API:      &http.Client{Timeout: 30 * time.Second},
	}
}

// UserAgent is the browser UA sent on every scrape request.
func UserAgent() string {
	return userAgent
}
