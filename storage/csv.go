package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"aqar_scraper/models"
)

var csvHeader = []string{
	"title", "property_type", "link", "price", "location", "state",
	"area", "bedrooms", "bathrooms", "down_payment", "payment_method",
	"price_per_area",
}

// CSVStore persists the dataset as a flat CSV table with a JSON sidecar for
// run metadata. Writes go through a temp file and rename so a failed write
// never destroys the previous dataset.
type CSVStore struct {
	datasetPath  string
	metadataPath string
}

func NewCSVStore(datasetPath, metadataPath string) *CSVStore {
	return &CSVStore{datasetPath: datasetPath, metadataPath: metadataPath}
}

func (s *CSVStore) Load(ctx context.Context) ([]models.Record, error) {
	f, err := os.Open(s.datasetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return DecodeCSV(f)
}

func (s *CSVStore) Save(ctx context.Context, records []models.Record) error {
	data, err := EncodeCSV(records)
	if err != nil {
		return err
	}
	return atomicWrite(s.datasetPath, data)
}

func (s *CSVStore) LoadMeta(ctx context.Context) (*models.RunMetadata, error) {
	data, err := os.ReadFile(s.metadataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var meta models.RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *CSVStore) SaveMeta(ctx context.Context, meta *models.RunMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(s.metadataPath, data)
}

func (s *CSVStore) Close() error {
	return nil
}

// EncodeCSV renders records as a CSV table with a header row. Shared with
// the snapshot archiver.
func EncodeCSV(records []models.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for i := range records {
		r := &records[i]
		row := []string{
			r.Title,
			r.PropertyType,
			r.Link,
			strconv.FormatInt(r.Price, 10),
			r.Location,
			r.State,
			strconv.Itoa(r.Area),
			strconv.Itoa(r.Bedrooms),
			strconv.Itoa(r.Bathrooms),
			strconv.FormatInt(r.DownPayment, 10),
			string(r.PaymentMethod),
			strconv.FormatFloat(r.PricePerArea, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeCSV parses a dataset table. Columns are located by header name so
// older files with fewer columns still load; missing optional columns
// default to zero values.
func DecodeCSV(r io.Reader) ([]models.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, required := range []string{"title", "price", "area"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("dataset missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		price, err := strconv.ParseInt(field(row, "price"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad price %q: %w", field(row, "price"), err)
		}
		area, err := strconv.Atoi(field(row, "area"))
		if err != nil {
			return nil, fmt.Errorf("bad area %q: %w", field(row, "area"), err)
		}

		rec := models.Record{
			Title:         field(row, "title"),
			PropertyType:  field(row, "property_type"),
			Link:          field(row, "link"),
			Price:         price,
			Location:      field(row, "location"),
			State:         field(row, "state"),
			Area:          area,
			Bedrooms:      atoiOrZero(field(row, "bedrooms")),
			Bathrooms:     atoiOrZero(field(row, "bathrooms")),
			DownPayment:   atoi64OrZero(field(row, "down_payment")),
			PaymentMethod: models.PaymentMethod(field(row, "payment_method")),
		}
		// Derived columns are never trusted from disk.
		rec.ComputePricePerArea()
		records = append(records, rec)
	}

	return records, nil
}

func atomicWrite(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func atoi64OrZero(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
