package main

import (
	"context"
	"flag"
	"log"
	"os"

	"aqar_scraper/config"
	"aqar_scraper/httputil"
	"aqar_scraper/logging"
	"aqar_scraper/scraper"
	"aqar_scraper/storage"
)

var (
	siteFlag  = flag.String("site", "", "Scrape only this site ID")
	pagesFlag = flag.Int("pages", 0, "Override the per-site page ceiling")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("scraper.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Sites) == 0 {
		log.Fatal("No site configs found under config/sites")
	}

	log.Printf("Loaded %d site configs", len(cfg.Sites))
	for id, site := range cfg.Sites {
		log.Printf("  - %s (%s)", site.Name, id)
		if *pagesFlag > 0 {
			site.MaxPages = *pagesFlag
		}
	}

	ctx := context.Background()

	store, err := storage.NewStore(ctx, &cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer store.Close()
	log.Printf("Dataset store: %s", cfg.Store.Backend)

	clients := httputil.NewClients(&cfg.Proxy)

	orchestrator := scraper.NewOrchestrator(cfg, clients, store)

	if cfg.Archive.Enabled {
		archiver, err := storage.NewSnapshotArchiver(ctx, cfg.Archive)
		if err != nil {
			log.Printf("Warning: snapshot archiver disabled: %v", err)
		} else {
			orchestrator.SetArchiver(archiver)
			log.Printf("Snapshot archive: s3://%s", cfg.Archive.Bucket)
		}
	}

	if *siteFlag != "" {
		if err := orchestrator.RunSite(ctx, *siteFlag); err != nil {
			log.Printf("Scrape failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := orchestrator.RunAll(ctx); err != nil {
		log.Printf("Scrape finished with errors: %v", err)
		os.Exit(1)
	}
	log.Println("Scrape complete")
}
