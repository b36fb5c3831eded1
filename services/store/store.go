package store

import (
	"context"
	"database/sql"
	"time"

	"jaekwon721/nikewatcher/internal/crawler"
	"jaekwon721/nikewatcher/logger"
	apperrors "jaekwon721/nikewatcher/pkg/errors"

	_ "modernc.org/sqlite"
)

// runTimestampLayout is the timestamp format shared by every price row of one run
const runTimestampLayout = "2006-01-02 15:04:05"

const schema = `
CREATE TABLE IF NOT EXISTS products (
	product_code TEXT PRIMARY KEY,
	title TEXT,
	subtitle TEXT,
	category TEXT,
	image_url TEXT,
	url TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS price_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	product_code TEXT,
	price REAL,
	timestamp DATETIME,
	FOREIGN KEY (product_code) REFERENCES products(product_code)
);
`

const upsertProduct = `
INSERT INTO products (product_code, title, subtitle, category, image_url, url)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(product_code) DO UPDATE SET
	title = excluded.title,
	subtitle = excluded.subtitle,
	category = excluded.category,
	image_url = excluded.image_url,
	url = excluded.url
`

const insertPrice = `
INSERT INTO price_history (product_code, price, timestamp)
VALUES (?, ?, ?)
`

// Store is the persistence reconciler. It owns a single SQLite connection
// used only after all fetch workers have joined, so no concurrent database
// access occurs.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens (and if necessary initializes) the SQLite database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewPersistence("", "failed to open database", err)
	}

	// SQLite handles one writer at a time; the reconciler is single-threaded
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.NewPersistence("", "failed to initialize schema", err)
	}

	log := logger.ForStore()
	log.Info().Str("path", path).Msg("Database initialized")

	return &Store{db: db, log: log}, nil
}

// SaveSnapshot merges one run's snapshot into durable storage: upsert each
// product's metadata row, then append one price observation per record, all
// stamped with a single run timestamp. The whole run is one transaction; any
// row failure rolls everything back. An empty snapshot is a logged no-op.
func (s *Store) SaveSnapshot(ctx context.Context, records []crawler.ProductRecord) error {
	if len(records) == 0 {
		s.log.Warn().Msg("No data to update")
		return nil
	}

	timestamp := time.Now().Format(runTimestampLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewPersistence("", "failed to begin transaction", err)
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, upsertProduct,
			rec.Code, rec.Title, rec.Subtitle, rec.Category, rec.ImageURL, rec.URL); err != nil {
			tx.Rollback()
			return apperrors.NewPersistence(rec.Code, "failed to upsert product", err)
		}
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, insertPrice, rec.Code, rec.Price, timestamp); err != nil {
			tx.Rollback()
			return apperrors.NewPersistence(rec.Code, "failed to append price observation", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewPersistence("", "failed to commit run", err)
	}

	s.log.Info().
		Int("products", len(records)).
		Int("price_entries", len(records)).
		Str("timestamp", timestamp).
		Msg("Snapshot persisted")

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
