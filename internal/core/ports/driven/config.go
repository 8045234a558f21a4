package driven

// Settings keys understood by the services and adapters. Values live in
// the config store under dot-notation keys.
const (
	SettingDataDir     = "data.dir"        // base data directory
	SettingOCRLangs    = "ocr.languages"   // tesseract language codes
	SettingOCRTimeout  = "ocr.timeout"     // per-page timeout in seconds
	SettingOCRWorkers  = "ocr.workers"     // concurrent OCR pages
	SettingOCRRate     = "ocr.rate"        // pages per second, 0 = unlimited
	SettingOCRDPI      = "ocr.dpi"         // render DPI for OCR input
	SettingS3Endpoint  = "s3.endpoint"     // optional S3 blob storage
	SettingS3Bucket    = "s3.bucket"
	SettingS3AccessKey = "s3.access_key"
	SettingS3SecretKey = "s3.secret_key"
	SettingS3UseSSL    = "s3.use_ssl"
)

// ConfigStore provides persistent key-value configuration storage.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if not set.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 if not set.
	GetInt(key string) int

	// GetFloat retrieves a float value, or 0 if not set.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, or false if not set.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice value, or nil if not set.
	GetStringSlice(key string) []string

	// Set stores a configuration value and persists it.
	Set(key string, value any) error

	// Load reloads configuration from the backing store.
	Load() error
}
