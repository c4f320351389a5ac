package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"aqar_scraper/models"
)

func sampleRecords() []models.Record {
	records := []models.Record{
		{
			Title:         "Modern Apartment in Smouha",
			PropertyType:  "Apartment",
			Link:          "https://www.bayut.eg/en/property/details-101.html",
			Price:         4500000,
			Location:      "Smouha",
			State:         "Smouha",
			Area:          150,
			Bedrooms:      3,
			Bathrooms:     2,
			DownPayment:   500000,
			PaymentMethod: models.PaymentInstallments,
		},
		{
			Title:         "Studio in Miami, with a \"sea view\"",
			PropertyType:  "Apartment",
			Price:         1200000,
			Location:      "Miami",
			State:         "Miami",
			Area:          75,
			Bedrooms:      1,
			Bathrooms:     1,
			PaymentMethod: models.PaymentCash,
		},
	}
	for i := range records {
		records[i].ComputePricePerArea()
	}
	return records
}

func newTestStore(t *testing.T) *CSVStore {
	t.Helper()
	dir := t.TempDir()
	return NewCSVStore(filepath.Join(dir, "listings.csv"), filepath.Join(dir, "last_run.json"))
}

func TestCSVStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := sampleRecords()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d mismatch:\nwant %+v\ngot  %+v", i, want[i], got[i])
		}
	}
}

func TestCSVStoreMissingFileIsFirstRun(t *testing.T) {
	store := newTestStore(t)

	records, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("missing dataset must not be an error, got %v", err)
	}
	if records != nil {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestCSVStoreNoTempFileLeftBehind(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(context.Background(), sampleRecords()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(store.datasetPath + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file should be renamed away after save")
	}
}

func TestCSVStorePricePerAreaRecomputedOnLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleRecords()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Tamper with the persisted derived column.
	data, err := os.ReadFile(store.datasetPath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	tampered := strings.Replace(string(data), "30000.00", "1.00", 1)
	if tampered == string(data) {
		t.Fatal("expected to find derived column value to tamper with")
	}
	if err := os.WriteFile(store.datasetPath, []byte(tampered), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got[0].PricePerArea != 30000.00 {
		t.Fatalf("expected price_per_area recomputed to 30000.00, got %.2f", got[0].PricePerArea)
	}
}

func TestCSVStoreToleratesOlderSchema(t *testing.T) {
	store := newTestStore(t)

	// A dataset written before the down_payment columns existed.
	old := "title,price,location,state,area,bedrooms,bathrooms\n" +
		"Old Apartment,2000000,Smouha,Smouha,100,2,1\n"
	if err := os.WriteFile(store.datasetPath, []byte(old), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	records, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].DownPayment != 0 {
		t.Fatalf("missing column should default to zero, got %d", records[0].DownPayment)
	}
	if records[0].PricePerArea != 20000.00 {
		t.Fatalf("expected derived column recomputed, got %.2f", records[0].PricePerArea)
	}
}

func TestCSVStoreCorruptDatasetSurfacesError(t *testing.T) {
	store := newTestStore(t)

	if err := os.WriteFile(store.datasetPath, []byte("title,price,area\nA,not-a-price,10\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected corrupt dataset to surface an error")
	}

	// The corrupt file must survive untouched for the operator.
	if _, err := os.Stat(store.datasetPath); err != nil {
		t.Fatalf("corrupt dataset file should still exist: %v", err)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meta, err := store.LoadMeta(ctx)
	if err != nil || meta != nil {
		t.Fatalf("expected no metadata before first run, got %+v, %v", meta, err)
	}

	want := &models.RunMetadata{
		RunID:           uuid.New(),
		Source:          "bayut",
		LastScrapedAt:   time.Now().Truncate(time.Second),
		TotalProperties: 42,
		PagesScraped:    3,
		ListingsFound:   50,
		NewCount:        40,
		DuplicateCount:  8,
		UpdatedCount:    2,
		RejectedCount:   1,
		Status:          models.RunStatusSuccess,
	}
	if err := store.SaveMeta(ctx, want); err != nil {
		t.Fatalf("save meta failed: %v", err)
	}

	got, err := store.LoadMeta(ctx)
	if err != nil {
		t.Fatalf("load meta failed: %v", err)
	}
	if got.RunID != want.RunID || got.Status != want.Status ||
		got.TotalProperties != want.TotalProperties ||
		!got.LastScrapedAt.Equal(want.LastScrapedAt) {
		t.Fatalf("metadata mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}
