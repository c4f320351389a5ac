package models

import "math"

// RawListing holds the untyped string fields pulled from one listing card.
// Empty string means the selector found nothing; the normalizer decides
// whether that is fatal for the record.
type RawListing struct {
	Source       string `json:"source"`
	PropertyType string `json:"property_type"`
	Link         string `json:"link"`
	Title        string `json:"title"`
	Price        string `json:"price"`
	Location     string `json:"location"`
	Area         string `json:"area"`
	Bedrooms     string `json:"bedrooms"`
	Bathrooms    string `json:"bathrooms"`
	DownPayment  string `json:"down_payment"`
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentInstallments PaymentMethod = "Installments"
)

// PaymentMethodFor derives the payment method from the cleaned down payment.
// Raw payment-method text from the source is never trusted; deriving here is
// what keeps the two columns consistent.
func PaymentMethodFor(downPayment int64) PaymentMethod {
	if downPayment > 0 {
		return PaymentInstallments
	}
	return PaymentCash
}

// Record is one normalized row of the persisted dataset.
type Record struct {
	Title         string        `json:"title" db:"title"`
	PropertyType  string        `json:"property_type" db:"property_type"`
	Link          string        `json:"link" db:"link"`
	Price         int64         `json:"price" db:"price"`
	Location      string        `json:"location" db:"location"`
	State         string        `json:"state" db:"state"`
	Area          int           `json:"area" db:"area"`
	Bedrooms      int           `json:"bedrooms" db:"bedrooms"`
	Bathrooms     int           `json:"bathrooms" db:"bathrooms"`
	DownPayment   int64         `json:"down_payment" db:"down_payment"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	PricePerArea  float64       `json:"price_per_area" db:"price_per_area"`
}

// ComputePricePerArea recomputes the derived column from price and area.
// Source-provided values are ignored.
func (r *Record) ComputePricePerArea() {
	if r.Area <= 0 {
		r.PricePerArea = 0
		return
	}
	r.PricePerArea = math.Round(float64(r.Price)/float64(r.Area)*100) / 100
}
