// Package file provides a TOML file-based configuration store.
// Settings are persisted to ~/.scandex/config.toml and exposed through
// flat dot-notation keys, so [ocr] languages = ["eng"] becomes
// "ocr.languages".
package file
