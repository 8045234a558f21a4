// Package sqlite implements the catalog port on SQLite. Document
// metadata and per-page extracted text live in two tables; the page
// write is transactional so an extraction artifact is stored fully or
// not at all.
package sqlite
