package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	_ "github.com/mattn/go-sqlite3"

	"github.com/flanksource/tilecat/api"
)

// Config holds store configuration
type Config struct {
	DBPath string // Database file path, ":memory:" for an ephemeral store
}

// Store persists tiles and company branding in SQLite
type Store struct {
	db     *sql.DB
	config Config
}

const tileColumns = `id, name, COALESCE(sku, ''), COALESCE(size, ''), COALESCE(price, ''),
	COALESCE(description, ''), COALESCE(finish, ''), COALESCE(photo_path, ''),
	COALESCE(web_path, ''), created_at`

// Open opens (and if needed creates) the catalog database
func Open(config Config) (*Store, error) {
	if config.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if config.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, config: config}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debugf("opened catalog database %s", config.DBPath)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		sku TEXT,
		size TEXT,
		price TEXT,
		description TEXT,
		finish TEXT,
		photo_path TEXT,
		web_path TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS company (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		company_name TEXT,
		logo_path TEXT,
		phone TEXT,
		email TEXT
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTile(ctx context.Context, db execer, tile *api.Tile) error {
	if tile.CreatedAt.IsZero() {
		tile.CreatedAt = time.Now().UTC()
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO tiles (name, sku, size, price, description, finish, photo_path, web_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tile.Name, nullable(tile.SKU), nullable(tile.Size), nullable(tile.Price),
		nullable(tile.Description), nullable(tile.Finish), nullable(tile.PhotoPath),
		nullable(tile.WebPath), tile.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tile.ID = id
	return nil
}

// Create inserts a tile and assigns its identifier
func (s *Store) Create(ctx context.Context, tile *api.Tile) error {
	if err := insertTile(ctx, s.db, tile); err != nil {
		return fmt.Errorf("failed to create tile: %w", err)
	}
	return nil
}

// CreateBatch inserts all tiles in a single transaction
func (s *Store) CreateBatch(ctx context.Context, tiles []api.Tile) error {
	if len(tiles) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for i := range tiles {
		if err := insertTile(ctx, tx, &tiles[i]); err != nil {
			_ = tx.Rollback()
			for j := range tiles[:i] {
				tiles[j].ID = 0
			}
			return fmt.Errorf("failed to insert tile %q: %w", tiles[i].Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tiles: %w", err)
	}
	return nil
}

func scanTile(row interface{ Scan(dest ...any) error }) (*api.Tile, error) {
	var t api.Tile
	var createdAt sql.NullTime
	if err := row.Scan(&t.ID, &t.Name, &t.SKU, &t.Size, &t.Price, &t.Description,
		&t.Finish, &t.PhotoPath, &t.WebPath, &createdAt); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time
	}
	return &t, nil
}

// List returns every tile, newest first
func (s *Store) List(ctx context.Context) ([]api.Tile, error) {
	return s.query(ctx, `SELECT `+tileColumns+` FROM tiles ORDER BY id DESC`)
}

// Get fetches a tile by id, returning api.ErrTileNotFound when absent
func (s *Store) Get(ctx context.Context, id int64) (*api.Tile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tileColumns+` FROM tiles WHERE id = ?`, id)
	tile, err := scanTile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", api.ErrTileNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tile %d: %w", id, err)
	}
	return tile, nil
}

// GetMany fetches the tiles matching ids, newest first. Unknown ids are ignored.
func (s *Store) GetMany(ctx context.Context, ids []int64) ([]api.Tile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.query(ctx, `SELECT `+tileColumns+` FROM tiles WHERE id IN (`+placeholders+`) ORDER BY id DESC`, args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]api.Tile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tiles: %w", err)
	}
	defer rows.Close()

	var tiles []api.Tile
	for rows.Next() {
		tile, err := scanTile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tile: %w", err)
		}
		tiles = append(tiles, *tile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tiles: %w", err)
	}
	return tiles, nil
}

// Delete removes a tile record, returning api.ErrTileNotFound when absent
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tile %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete tile %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", api.ErrTileNotFound, id)
	}
	return nil
}

// Company returns the stored branding, or nil when none was saved
func (s *Store) Company(ctx context.Context) (*api.Company, error) {
	var c api.Company
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(company_name, ''), COALESCE(logo_path, ''), COALESCE(phone, ''), COALESCE(email, '')
		FROM company WHERE id = 1`).Scan(&c.Name, &c.LogoPath, &c.Phone, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// SaveCompany replaces the stored branding
func (s *Store) SaveCompany(ctx context.Context, c api.Company) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO company (id, company_name, logo_path, phone, email)
		VALUES (1, ?, ?, ?, ?)`,
		nullable(c.Name), nullable(c.LogoPath), nullable(c.Phone), nullable(c.Email))
	if err != nil {
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
