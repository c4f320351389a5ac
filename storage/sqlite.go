package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"aqar_scraper/models"
)

// SQLiteStore keeps the dataset in a local SQLite database, one row per
// record plus a scrape_runs table holding run metadata history. The
// dashboard reads the same file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		property_type TEXT,
		link TEXT,
		price INTEGER NOT NULL,
		location TEXT,
		state TEXT,
		area INTEGER NOT NULL,
		bedrooms INTEGER,
		bathrooms INTEGER,
		down_payment INTEGER DEFAULT 0,
		payment_method TEXT,
		price_per_area REAL
	);

	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		source TEXT,
		last_scraped_at DATETIME,
		total_properties INTEGER,
		pages_scraped INTEGER,
		listings_found INTEGER,
		new_count INTEGER,
		duplicate_count INTEGER,
		updated_count INTEGER,
		rejected_count INTEGER,
		status TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_properties_location ON properties(location);
	CREATE INDEX IF NOT EXISTS idx_runs_scraped_at ON scrape_runs(last_scraped_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, property_type, link, price, location, state, area,
			bedrooms, bathrooms, down_payment, payment_method
		FROM properties ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		var propertyType, link, location, state, paymentMethod sql.NullString
		err := rows.Scan(&r.Title, &propertyType, &link, &r.Price, &location,
			&state, &r.Area, &r.Bedrooms, &r.Bathrooms, &r.DownPayment, &paymentMethod)
		if err != nil {
			return nil, err
		}
		r.PropertyType = propertyType.String
		r.Link = link.String
		r.Location = location.String
		r.State = state.String
		r.PaymentMethod = models.PaymentMethod(paymentMethod.String)
		r.ComputePricePerArea()
		records = append(records, r)
	}
	return records, rows.Err()
}

// Save replaces the dataset wholesale inside one transaction, so a failed
// write rolls back to the previous data.
func (s *SQLiteStore) Save(ctx context.Context, records []models.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM properties`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO properties (title, property_type, link, price, location, state,
			area, bedrooms, bathrooms, down_payment, payment_method, price_per_area)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		_, err := stmt.ExecContext(ctx, r.Title, r.PropertyType, r.Link, r.Price,
			r.Location, r.State, r.Area, r.Bedrooms, r.Bathrooms, r.DownPayment,
			string(r.PaymentMethod), r.PricePerArea)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadMeta(ctx context.Context) (*models.RunMetadata, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, source, last_scraped_at, total_properties, pages_scraped,
			listings_found, new_count, duplicate_count, updated_count,
			rejected_count, status
		FROM scrape_runs ORDER BY id DESC LIMIT 1`)

	var meta models.RunMetadata
	var runID string
	err := row.Scan(&runID, &meta.Source, &meta.LastScrapedAt, &meta.TotalProperties,
		&meta.PagesScraped, &meta.ListingsFound, &meta.NewCount, &meta.DuplicateCount,
		&meta.UpdatedCount, &meta.RejectedCount, &meta.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	meta.RunID, _ = uuid.Parse(runID)
	return &meta, nil
}

func (s *SQLiteStore) SaveMeta(ctx context.Context, meta *models.RunMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_runs (run_id, source, last_scraped_at, total_properties,
			pages_scraped, listings_found, new_count, duplicate_count, updated_count,
			rejected_count, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.RunID.String(), meta.Source, meta.LastScrapedAt, meta.TotalProperties,
		meta.PagesScraped, meta.ListingsFound, meta.NewCount, meta.DuplicateCount,
		meta.UpdatedCount, meta.RejectedCount, string(meta.Status))
	return err
}
