package services

import (
	"strconv"
	"testing"

	"aqar_scraper/models"
)

func validRaw() models.RawListing {
	return models.RawListing{
		Source:       "bayut",
		PropertyType: "Apartment",
		Link:         "https://www.bayut.eg/en/property/details-1.html",
		Title:        "Modern Apartment in Smouha",
		Price:        "4,500,000 EGP",
		Location:     "Smouha, Alexandria",
		Area:         "150 Sq. M.",
		Bedrooms:     "3",
		Bathrooms:    "2",
		DownPayment:  "",
	}
}

func TestNormalizeValidListing(t *testing.T) {
	n := NewNormalizer()

	rec, ok := n.Normalize(validRaw())
	if !ok {
		t.Fatal("expected listing to normalize")
	}
	if rec.Price != 4500000 {
		t.Fatalf("expected price 4500000, got %d", rec.Price)
	}
	if rec.Area != 150 {
		t.Fatalf("expected area 150, got %d", rec.Area)
	}
	if rec.Bedrooms != 3 || rec.Bathrooms != 2 {
		t.Fatalf("expected 3 bed / 2 bath, got %d / %d", rec.Bedrooms, rec.Bathrooms)
	}
	if rec.Location != "Smouha" || rec.State != "Smouha" {
		t.Fatalf("expected Smouha/Smouha, got %s/%s", rec.Location, rec.State)
	}
	if rec.PaymentMethod != models.PaymentCash {
		t.Fatalf("expected Cash, got %s", rec.PaymentMethod)
	}
	if rec.PricePerArea != 30000.00 {
		t.Fatalf("expected price per area 30000.00, got %.2f", rec.PricePerArea)
	}
}

func TestNormalizeRejectsRequiredFields(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name   string
		mutate func(*models.RawListing)
	}{
		{"missing title", func(r *models.RawListing) { r.Title = "" }},
		{"missing price", func(r *models.RawListing) { r.Price = "" }},
		{"unparseable price", func(r *models.RawListing) { r.Price = "Call us" }},
		{"missing area", func(r *models.RawListing) { r.Area = "" }},
		{"zero area", func(r *models.RawListing) { r.Area = "0" }},
		{"negative area", func(r *models.RawListing) { r.Area = "-20" }},
		{"missing location", func(r *models.RawListing) { r.Location = "" }},
		{"unparseable bedrooms", func(r *models.RawListing) { r.Bedrooms = "many" }},
		{"unparseable bathrooms", func(r *models.RawListing) { r.Bathrooms = "n/a" }},
	}

	for _, tt := range tests {
		raw := validRaw()
		tt.mutate(&raw)
		if _, ok := n.Normalize(raw); ok {
			t.Errorf("%s: expected rejection", tt.name)
		}
	}
}

func TestCleanBedrooms(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{"Studio", 1, true},
		{"studio ", 1, true},
		{"3 + Maid", 3, true},
		{"4+", 4, true},
		{"2.0", 2, true},
		{"", 0, false},
		{"many", 0, false},
	}

	for _, tt := range tests {
		got, ok := cleanBedrooms(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("cleanBedrooms(%q) = (%d, %v); want (%d, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCleanArea(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"150 Sq. M.", 150, true},
		{"1,250 Sq. M.", 1250, true},
		{"90 sqm", 90, true},
		{"200 m²", 200, true},
		{"185", 185, true},
		{"", 0, false},
		{"large", 0, false},
	}

	for _, tt := range tests {
		got, ok := cleanArea(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("cleanArea(%q) = (%d, %v); want (%d, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCleanDownPayment(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"", 0},
		{"0% Down Payment", 0},
		{"500,000 EGP", 500000},
		{"1500 monthly / 5 years", 1500},
		{"2,000 monthly / 1 year", 2000},
		{"750 monthly / 1.5 years", 750},
		{"EGP 300,000", 300000},
		{"negotiable", 0},
	}

	for _, tt := range tests {
		got := cleanDownPayment(tt.raw)
		if got != tt.want {
			t.Errorf("cleanDownPayment(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestPaymentMethodDerivation(t *testing.T) {
	n := NewNormalizer()

	raw := validRaw()
	raw.DownPayment = "500,000 EGP"
	rec, ok := n.Normalize(raw)
	if !ok {
		t.Fatal("expected listing to normalize")
	}
	if rec.DownPayment != 500000 {
		t.Fatalf("expected down payment 500000, got %d", rec.DownPayment)
	}
	if rec.PaymentMethod != models.PaymentInstallments {
		t.Fatalf("expected Installments, got %s", rec.PaymentMethod)
	}

	raw.DownPayment = "0% Down Payment"
	rec, ok = n.Normalize(raw)
	if !ok {
		t.Fatal("expected listing to normalize")
	}
	if rec.PaymentMethod != models.PaymentCash {
		t.Fatalf("expected Cash, got %s", rec.PaymentMethod)
	}
}

// Normalizing the string form of an already-clean record must reproduce the
// record exactly; merges can re-run normalization over history.
func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()

	raw := validRaw()
	raw.DownPayment = "350,000 EGP"
	first, ok := n.Normalize(raw)
	if !ok {
		t.Fatal("expected listing to normalize")
	}

	again := models.RawListing{
		Source:       raw.Source,
		PropertyType: first.PropertyType,
		Link:         first.Link,
		Title:        first.Title,
		Price:        strconv.FormatInt(first.Price, 10),
		Location:     first.Location + ", " + first.State,
		Area:         strconv.Itoa(first.Area),
		Bedrooms:     strconv.Itoa(first.Bedrooms),
		Bathrooms:    strconv.Itoa(first.Bathrooms),
		DownPayment:  strconv.FormatInt(first.DownPayment, 10),
	}

	second, ok := n.Normalize(again)
	if !ok {
		t.Fatal("expected re-normalization to succeed")
	}
	if *first != *second {
		t.Fatalf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", *first, *second)
	}
}

func TestNormalizeBatchCountsRejects(t *testing.T) {
	n := NewNormalizer()

	bad := validRaw()
	bad.Price = "ask"

	records, rejected := n.NormalizeBatch([]models.RawListing{validRaw(), bad, validRaw()})
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if rejected != 1 {
		t.Fatalf("expected 1 rejection, got %d", rejected)
	}
}
