// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - BlobStore: Raw PDF byte persistence
//   - Catalog: Document metadata and extracted-text persistence
//   - TextExtractor: Embedded text-layer extraction
//   - PageRenderer: Page rasterization for the OCR fallback
//   - OCREngine: Optical character recognition of a rendered page
//
// ConfigStore is optional; callers fall back to built-in defaults when
// no configuration backend is wired.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
