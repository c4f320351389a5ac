package services

import (
	"log"
	"math"

	"aqar_scraper/identity"
	"aqar_scraper/models"
)

const (
	// priceUpdateThreshold is the relative price delta above which a
	// re-observed listing counts as a genuine price update rather than a
	// duplicate.
	priceUpdateThreshold = 0.10
	// lossTolerance bounds how many records a merge may remove versus the
	// prior dataset before the run is rejected outright.
	lossTolerance = 10
)

// MergeSummary reports what a merge did with the incoming batch.
type MergeSummary struct {
	NewCount       int
	DuplicateCount int
	UpdatedCount   int
	Guarded        bool
}

// Merge combines a freshly normalized batch with the persisted dataset.
//
// Identity is the composite match key (title/location prefixes), not the
// link. A matched record whose price moved more than the threshold is
// appended alongside the old row so price history survives; a matched
// record with an unchanged price is dropped as a duplicate. A final strict
// keep-first pass removes exact repeats introduced across runs, and the
// loss guard refuses any merge that would shrink the dataset past the
// tolerance, returning the existing dataset untouched.
func Merge(existing, batch []models.Record) ([]models.Record, MergeSummary) {
	var summary MergeSummary

	latestPrice := make(map[string]int64, len(existing))
	for i := range existing {
		latestPrice[identity.DedupKey(&existing[i])] = existing[i].Price
	}

	survivors := make([]models.Record, 0, len(batch))
	for i := range batch {
		rec := batch[i]
		key := identity.DedupKey(&rec)

		oldPrice, seen := latestPrice[key]
		if !seen {
			summary.NewCount++
			survivors = append(survivors, rec)
			latestPrice[key] = rec.Price
			continue
		}

		if isPriceUpdate(oldPrice, rec.Price) {
			summary.UpdatedCount++
			survivors = append(survivors, rec)
			latestPrice[key] = rec.Price
			continue
		}

		summary.DuplicateCount++
	}

	merged := make([]models.Record, 0, len(existing)+len(survivors))
	merged = append(merged, existing...)
	merged = append(merged, survivors...)

	merged = dedupeStrict(merged)

	netChange := len(merged) - len(existing)
	if netChange < -lossTolerance {
		log.Printf("Merge loss guard tripped: net change %d exceeds tolerance of -%d, keeping existing dataset",
			netChange, lossTolerance)
		summary.Guarded = true
		return existing, summary
	}

	return merged, summary
}

// dedupeStrict removes exact repeats on the strict key, keeping the first
// (oldest) copy of each record.
func dedupeStrict(records []models.Record) []models.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.Record, 0, len(records))
	for i := range records {
		key := identity.StrictKey(&records[i])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, records[i])
	}
	return out
}

func isPriceUpdate(oldPrice, newPrice int64) bool {
	if oldPrice == 0 {
		return newPrice != 0
	}
	diff := math.Abs(float64(newPrice-oldPrice)) / float64(oldPrice)
	return diff > priceUpdateThreshold
}
