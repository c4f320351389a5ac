package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"aqar_scraper/config"
	"aqar_scraper/httputil"
	"aqar_scraper/models"
	"aqar_scraper/services"
	"aqar_scraper/storage"
)

// Orchestrator runs the full pipeline for each configured site:
// walk -> normalize -> merge against the persisted dataset -> persist.
// The dataset is only written after the whole batch is assembled and the
// merge is validated; killing the process mid-run leaves the prior data
// untouched.
type Orchestrator struct {
	cfg        *config.Config
	clients    *httputil.Clients
	store      storage.DatasetStore
	normalizer *services.Normalizer
	archiver   *storage.SnapshotArchiver
	handlers   map[string]Handler
}

func NewOrchestrator(cfg *config.Config, clients *httputil.Clients, store storage.DatasetStore) *Orchestrator {
	handlers := make(map[string]Handler, len(cfg.Sites))
	for id, siteCfg := range cfg.Sites {
		handlers[id] = NewHandler(siteCfg)
	}

	return &Orchestrator{
		cfg:        cfg,
		clients:    clients,
		store:      store,
		normalizer: services.NewNormalizer(),
		handlers:   handlers,
	}
}

// SetArchiver enables post-save snapshot uploads.
func (o *Orchestrator) SetArchiver(a *storage.SnapshotArchiver) {
	o.archiver = a
}

func (o *Orchestrator) RunAll(ctx context.Context) error {
	var firstErr error
	for siteID := range o.cfg.Sites {
		if err := o.RunSite(ctx, siteID); err != nil {
			log.Printf("Error running site %s: %v", siteID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (o *Orchestrator) RunSite(ctx context.Context, siteID string) error {
	siteCfg, ok := o.cfg.Sites[siteID]
	if !ok {
		return fmt.Errorf("unknown site: %s", siteID)
	}
	handler := o.handlers[siteID]

	log.Printf("Starting scrape for %s", siteCfg.Name)

	meta := &models.RunMetadata{
		RunID:  uuid.New(),
		Source: siteID,
	}

	walker := NewWalker(o.clients.Scraping, siteCfg, handler)
	raws, pages, err := walker.Walk(ctx)
	if err != nil {
		return err // context cancelled, leave the dataset alone
	}
	meta.PagesScraped = pages
	meta.ListingsFound = len(raws)

	if len(raws) == 0 {
		meta.Status = models.RunStatusFailed
		meta.LastScrapedAt = time.Now()
		o.saveMeta(ctx, meta)
		return fmt.Errorf("%s: no listings collected", siteID)
	}

	records, rejected := o.normalizer.NormalizeBatch(raws)
	meta.RejectedCount = rejected

	existing, err := o.store.Load(ctx)
	if err != nil {
		// An unreadable prior dataset must not kill the run or destroy the
		// old file: proceed as a first run, the old data survives on disk
		// until a valid write replaces it.
		log.Printf("Warning: could not read existing dataset, treating as empty: %v", err)
		existing = nil
	}
	firstRun := len(existing) == 0

	merged, summary := services.Merge(existing, records)
	meta.NewCount = summary.NewCount
	meta.DuplicateCount = summary.DuplicateCount
	meta.UpdatedCount = summary.UpdatedCount
	meta.TotalProperties = len(merged)
	meta.LastScrapedAt = time.Now()

	switch {
	case summary.Guarded:
		meta.Status = models.RunStatusGuarded
	case firstRun:
		meta.Status = models.RunStatusFirstRun
	default:
		meta.Status = models.RunStatusSuccess
	}

	if summary.Guarded {
		log.Printf("%s: merge guarded, dataset left unchanged (%d records)", siteID, len(existing))
		o.saveMeta(ctx, meta)
		return nil
	}

	if err := o.store.Save(ctx, merged); err != nil {
		meta.Status = models.RunStatusFailed
		o.saveMeta(ctx, meta)
		return fmt.Errorf("save dataset: %w", err)
	}

	if o.archiver != nil {
		if key, err := o.archiver.Archive(ctx, merged); err != nil {
			log.Printf("Warning: snapshot upload failed: %v", err)
		} else {
			log.Printf("Snapshot archived: %s", key)
		}
	}

	o.saveMeta(ctx, meta)

	log.Printf("%s complete: %d found, %d new, %d duplicates, %d price updates, %d rejected, %d total",
		siteID, meta.ListingsFound, meta.NewCount, meta.DuplicateCount,
		meta.UpdatedCount, meta.RejectedCount, meta.TotalProperties)

	return nil
}

func (o *Orchestrator) saveMeta(ctx context.Context, meta *models.RunMetadata) {
	if err := o.store.SaveMeta(ctx, meta); err != nil {
		log.Printf("Warning: failed to save run metadata: %v", err)
	}
}
