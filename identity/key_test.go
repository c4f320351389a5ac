package identity

import (
	"testing"

	"aqar_scraper/models"
)

func TestDedupKeyNormalization(t *testing.T) {
	a := &models.Record{Title: "Apartment in Smouha", Location: "Smouha", Price: 3000000}
	b := &models.Record{Title: "  APARTMENT   in smouha ", Location: "SMOUHA", Price: 3000000}

	if DedupKey(a) != DedupKey(b) {
		t.Fatal("case and whitespace variants should share a key")
	}
}

func TestDedupKeyIgnoresPrice(t *testing.T) {
	a := &models.Record{Title: "Apartment in Smouha", Location: "Smouha", Price: 3000000}
	b := &models.Record{Title: "Apartment in Smouha", Location: "Smouha", Price: 3360000}

	if DedupKey(a) != DedupKey(b) {
		t.Fatal("price must not participate in the match key")
	}
}

func TestDedupKeyTruncatesTitle(t *testing.T) {
	long := "Spacious Sea-View Apartment with Garden Access and Private Parking near the Corniche"
	a := &models.Record{Title: long, Location: "Smouha"}
	b := &models.Record{Title: long + " (reduced)", Location: "Smouha"}

	if DedupKey(a) != DedupKey(b) {
		t.Fatal("trailing drift beyond the prefix should not change the key")
	}
}

func TestDedupKeyDistinguishesLocations(t *testing.T) {
	a := &models.Record{Title: "Apartment", Location: "Smouha"}
	b := &models.Record{Title: "Apartment", Location: "Miami"}

	if DedupKey(a) == DedupKey(b) {
		t.Fatal("different locations must not collide")
	}
}

func TestStrictKeyIncludesPriceAndUnitShape(t *testing.T) {
	base := models.Record{Title: "Apartment", Location: "Smouha", Price: 3000000,
		PropertyType: "Apartment", Bedrooms: 2}

	other := base
	other.Price = 3100000
	if StrictKey(&base) == StrictKey(&other) {
		t.Fatal("strict key must include price")
	}

	other = base
	other.Bedrooms = 3
	if StrictKey(&base) == StrictKey(&other) {
		t.Fatal("strict key must include bedrooms")
	}

	other = base
	other.PropertyType = "Villa"
	if StrictKey(&base) == StrictKey(&other) {
		t.Fatal("strict key must include property type")
	}

	same := base
	if StrictKey(&base) != StrictKey(&same) {
		t.Fatal("identical records must share a strict key")
	}
}
