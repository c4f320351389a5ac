package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aqar_scraper/models"
)

// PostgresStore is the shared-deployment backend: same wholesale-replace
// semantics as the CSV store, behind a connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.MaxConns = 5
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		property_type TEXT,
		link TEXT,
		price BIGINT NOT NULL,
		location TEXT,
		state TEXT,
		area INT NOT NULL,
		bedrooms INT,
		bathrooms INT,
		down_payment BIGINT DEFAULT 0,
		payment_method TEXT,
		price_per_area DOUBLE PRECISION
	);

	CREATE TABLE IF NOT EXISTS scrape_runs (
		id BIGSERIAL PRIMARY KEY,
		run_id UUID,
		source TEXT,
		last_scraped_at TIMESTAMPTZ,
		total_properties INT,
		pages_scraped INT,
		listings_found INT,
		new_count INT,
		duplicate_count INT,
		updated_count INT,
		rejected_count INT,
		status TEXT
	);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *PostgresStore) Load(ctx context.Context) ([]models.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT title, COALESCE(property_type, ''), COALESCE(link, ''), price,
			COALESCE(location, ''), COALESCE(state, ''), area,
			COALESCE(bedrooms, 0), COALESCE(bathrooms, 0),
			COALESCE(down_payment, 0), COALESCE(payment_method, '')
		FROM properties ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		var paymentMethod string
		err := rows.Scan(&r.Title, &r.PropertyType, &r.Link, &r.Price, &r.Location,
			&r.State, &r.Area, &r.Bedrooms, &r.Bathrooms, &r.DownPayment, &paymentMethod)
		if err != nil {
			return nil, err
		}
		r.PaymentMethod = models.PaymentMethod(paymentMethod)
		r.ComputePricePerArea()
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Save(ctx context.Context, records []models.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM properties`); err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, []interface{}{
			r.Title, r.PropertyType, r.Link, r.Price, r.Location, r.State,
			r.Area, r.Bedrooms, r.Bathrooms, r.DownPayment,
			string(r.PaymentMethod), r.PricePerArea,
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"properties"},
		[]string{"title", "property_type", "link", "price", "location", "state",
			"area", "bedrooms", "bathrooms", "down_payment", "payment_method",
			"price_per_area"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy records: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) LoadMeta(ctx context.Context) (*models.RunMetadata, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT run_id, source, last_scraped_at, total_properties, pages_scraped,
			listings_found, new_count, duplicate_count, updated_count,
			rejected_count, status
		FROM scrape_runs ORDER BY id DESC LIMIT 1`)

	var meta models.RunMetadata
	var runID uuid.UUID
	err := row.Scan(&runID, &meta.Source, &meta.LastScrapedAt, &meta.TotalProperties,
		&meta.PagesScraped, &meta.ListingsFound, &meta.NewCount, &meta.DuplicateCount,
		&meta.UpdatedCount, &meta.RejectedCount, &meta.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	meta.RunID = runID
	return &meta, nil
}

func (s *PostgresStore) SaveMeta(ctx context.Context, meta *models.RunMetadata) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scrape_runs (run_id, source, last_scraped_at, total_properties,
			pages_scraped, listings_found, new_count, duplicate_count, updated_count,
			rejected_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		meta.RunID, meta.Source, meta.LastScrapedAt, meta.TotalProperties,
		meta.PagesScraped, meta.ListingsFound, meta.NewCount, meta.DuplicateCount,
		meta.UpdatedCount, meta.RejectedCount, string(meta.Status))
	return err
}
