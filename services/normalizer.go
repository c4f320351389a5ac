package services

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"aqar_scraper/models"
)

var (
	// leadingIntRegex captures the numeric amount at the start of a cleaned
	// money string, e.g. "500000" from "500000 monthly / 5 years".
	leadingIntRegex = regexp.MustCompile(`^\d+`)
	// durationRegex matches the installment duration phrase appended to
	// down-payment amounts: "monthly / 5 years", "monthly / 1 year",
	// "monthly / 1.5 years".
	durationRegex = regexp.MustCompile(`(?i)monthly\s*/\s*\d+(?:\.\d+)?\s*years?`)
	// areaUnitRegex strips the unit suffix from area strings.
	areaUnitRegex = regexp.MustCompile(`(?i)\s*(sq\.?\s*m\.?|sqm|m²|m2)\s*$`)
)

// Normalizer converts RawListings into validated Records. All cleaning
// rules are idempotent: feeding an already-clean value back through yields
// the same result, which matters because merges may re-normalize history.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeBatch cleans a batch, dropping rejected records. Returns the
// surviving records and the rejection count.
func (n *Normalizer) NormalizeBatch(raws []models.RawListing) ([]models.Record, int) {
	records := make([]models.Record, 0, len(raws))
	rejected := 0

	for _, raw := range raws {
		rec, ok := n.Normalize(raw)
		if !ok {
			rejected++
			continue
		}
		records = append(records, *rec)
	}

	if rejected > 0 {
		log.Printf("Normalizer: dropped %d of %d listings", rejected, len(raws))
	}
	return records, rejected
}

// Normalize cleans one raw listing. The second return is false when a
// required field is missing or unparseable.
func (n *Normalizer) Normalize(raw models.RawListing) (*models.Record, bool) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return nil, false
	}

	price, ok := cleanPrice(raw.Price)
	if !ok {
		return nil, false
	}

	area, ok := cleanArea(raw.Area)
	if !ok || area <= 0 {
		return nil, false
	}

	bedrooms, ok := cleanBedrooms(raw.Bedrooms)
	if !ok {
		return nil, false
	}

	bathrooms, ok := cleanBathrooms(raw.Bathrooms)
	if !ok {
		return nil, false
	}

	location, state := ResolveLocation(raw.Location)
	if location == "" {
		return nil, false
	}

	downPayment := cleanDownPayment(raw.DownPayment)

	rec := &models.Record{
		Title:         title,
		PropertyType:  strings.TrimSpace(raw.PropertyType),
		Link:          strings.TrimSpace(raw.Link),
		Price:         price,
		Location:      location,
		State:         state,
		Area:          area,
		Bedrooms:      bedrooms,
		Bathrooms:     bathrooms,
		DownPayment:   downPayment,
		PaymentMethod: models.PaymentMethodFor(downPayment),
	}
	rec.ComputePricePerArea()

	return rec, true
}

// cleanPrice parses a currency amount like "4,500,000 EGP" into an integer.
func cleanPrice(s string) (int64, bool) {
	s = stripCurrency(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cleanArea parses an area like "1,250 Sq. M." into an integer.
func cleanArea(s string) (int, bool) {
	s = strings.TrimSpace(s)
	s = areaUnitRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cleanBedrooms handles the source conventions for bedroom counts:
// "Studio" means 1, "3 + Maid" and "3+" mean 3, "2.0" means 2.
func cleanBedrooms(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if strings.Contains(strings.ToLower(s), "studio") {
		return 1, true
	}
	return parseCount(s)
}

// cleanBathrooms applies the same stripping rules as bedrooms without the
// studio mapping.
func cleanBathrooms(s string) (int, bool) {
	return parseCount(strings.TrimSpace(s))
}

func parseCount(s string) (int, bool) {
	s = replaceFold(s, "+ maid", "")
	s = strings.ReplaceAll(s, "+", "")
	s = strings.TrimSuffix(strings.TrimSpace(s), ".0")
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// cleanDownPayment parses the down-payment badge. Recognized shapes:
// "0% Down Payment" (no down payment), "500,000 EGP", and installment
// templates like "1500 monthly / 5 years" where only the leading amount
// matters. Anything unparseable defaults to 0.
func cleanDownPayment(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if replaceFold(s, "0% down payment", "") != s {
		return 0
	}

	s = durationRegex.ReplaceAllString(s, "")
	s = stripCurrency(s)

	match := leadingIntRegex.FindString(s)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func stripCurrency(s string) string {
	s = replaceFold(s, "egp", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}
