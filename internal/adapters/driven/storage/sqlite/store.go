package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scandex-labs/scandex-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/scandex-labs/scandex-cli/internal/core/domain"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed metadata store. It provides the catalog
// interface through a wrapper type.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.scandex/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".scandex", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Catalog returns a Catalog interface backed by this store.
func (s *Store) Catalog() driven.Catalog {
	return &catalog{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Catalog ====================

// catalog implements driven.Catalog.
type catalog struct {
	store *Store
}

var _ driven.Catalog = (*catalog)(nil)

// SaveDocument stores or updates a document's metadata.
func (c *catalog) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, storage_ref, page_count, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			storage_ref = excluded.storage_ref,
			page_count = excluded.page_count
	`, doc.ID, doc.Name, doc.StorageRef, doc.PageCount, doc.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (c *catalog) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT id, name, storage_ref, page_count, created_at
		FROM documents WHERE id = ?
	`, id)

	var doc domain.Document
	var createdAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.Name, &doc.StorageRef, &doc.PageCount, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}

	return &doc, nil
}

// ListDocuments returns all catalogued documents.
func (c *catalog) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, name, storage_ref, page_count, created_at
		FROM documents ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var createdAt sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.StorageRef, &doc.PageCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if createdAt.Valid {
			doc.CreatedAt = createdAt.Time
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// ListDocumentIDs returns the ids of all catalogued documents.
func (c *catalog) ListDocumentIDs(ctx context.Context) ([]string, error) {
	rows, err := c.store.db.QueryContext(ctx, "SELECT id FROM documents ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying document ids: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document ids: %w", err)
	}

	return ids, nil
}

// DeleteDocument removes a document and its pages.
func (c *catalog) DeleteDocument(ctx context.Context, id string) error {
	// Pages cascade via the foreign key.
	_, err := c.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// PutDocumentText stores the extraction artifact transactionally:
// either every page lands or none does.
func (c *catalog) PutDocumentText(ctx context.Context, text *domain.DocumentText) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE document_id = ?", text.DocumentID); err != nil {
		return fmt.Errorf("clearing pages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pages (document_id, page_number, text, source)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, page := range text.Pages {
		if _, err := stmt.ExecContext(ctx, text.DocumentID, page.PageNumber, page.Text, string(page.Source)); err != nil {
			return fmt.Errorf("saving page %d: %w", page.PageNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocumentText retrieves the extraction artifact for a document.
func (c *catalog) GetDocumentText(ctx context.Context, documentID string) (*domain.DocumentText, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT page_number, text, source
		FROM pages WHERE document_id = ?
		ORDER BY page_number
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	var pages []domain.PageText
	for rows.Next() {
		var page domain.PageText
		var source string
		if err := rows.Scan(&page.PageNumber, &page.Text, &source); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		page.Source = domain.TextSource(source)
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pages: %w", err)
	}

	if pages == nil {
		// A catalogued document may legitimately have zero extracted
		// pages; only an unknown id is a miss.
		var one int
		err := c.store.db.QueryRowContext(ctx,
			`SELECT 1 FROM documents WHERE id = ?`, documentID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("checking document: %w", err)
		}
		return &domain.DocumentText{DocumentID: documentID}, nil
	}

	return &domain.DocumentText{
		DocumentID: documentID,
		Pages:      pages,
		FullText:   domain.JoinPages(pages),
	}, nil
}
