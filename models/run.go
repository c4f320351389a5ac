package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusSuccess  RunStatus = "success"
	RunStatusFailed   RunStatus = "failed"
	RunStatusFirstRun RunStatus = "first_run"
	// RunStatusGuarded marks a run where the merge loss guard tripped and the
	// dataset was left untouched.
	RunStatusGuarded RunStatus = "guarded"
)

// RunMetadata is the sidecar record describing the most recent scrape run.
// The dashboard reads it to display freshness; it is overwritten every run.
type RunMetadata struct {
	RunID           uuid.UUID `json:"run_id" db:"run_id"`
	Source          string    `json:"source" db:"source"`
	LastScrapedAt   time.Time `json:"last_scraped_at" db:"last_scraped_at"`
	TotalProperties int       `json:"total_properties" db:"total_properties"`
	PagesScraped    int       `json:"pages_scraped" db:"pages_scraped"`
	ListingsFound   int       `json:"listings_found" db:"listings_found"`
	NewCount        int       `json:"new_count" db:"new_count"`
	DuplicateCount  int       `json:"duplicate_count" db:"duplicate_count"`
	UpdatedCount    int       `json:"updated_count" db:"updated_count"`
	RejectedCount   int       `json:"rejected_count" db:"rejected_count"`
	Status          RunStatus `json:"status" db:"status"`
}
