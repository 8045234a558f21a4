package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure OCR, storage, and data directory settings.

Settings are stored in ~/.scandex/config.toml and take effect on the
next ingestion. Re-run extraction for existing documents with
"scandex reingest".`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value by dot-notation key.

Known keys:
  data.dir       base data directory
  ocr.languages  comma-separated tesseract language codes (e.g. eng,deu)
  ocr.timeout    per-page OCR timeout in seconds
  ocr.workers    number of pages OCR'd concurrently
  ocr.rate       OCR pages per second (0 = unlimited)
  ocr.dpi        render resolution for OCR input
  s3.endpoint    S3/MinIO endpoint (empty = local blob storage)
  s3.bucket, s3.access_key, s3.secret_key, s3.use_ssl`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Data]")
	cmd.Printf("  Directory: %s\n", orDefault(configStore.GetString(driven.SettingDataDir), "~/.scandex"))
	cmd.Println()

	cmd.Println("[OCR]")
	langs := configStore.GetStringSlice(driven.SettingOCRLangs)
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	cmd.Printf("  Languages: %s\n", strings.Join(langs, ", "))
	cmd.Printf("  Timeout:   %s\n", orDefault(intSetting(driven.SettingOCRTimeout), "60s"))
	cmd.Printf("  Workers:   %s\n", orDefault(intSetting(driven.SettingOCRWorkers), "2"))
	cmd.Printf("  Rate:      %s\n", orDefault(floatSetting(driven.SettingOCRRate), "unlimited"))
	cmd.Printf("  DPI:       %s\n", orDefault(intSetting(driven.SettingOCRDPI), "150"))
	cmd.Println()

	cmd.Println("[Storage]")
	endpoint := configStore.GetString(driven.SettingS3Endpoint)
	if endpoint == "" {
		cmd.Println("  Blobs: local filesystem")
	} else {
		cmd.Printf("  Blobs:  s3 (%s)\n", endpoint)
		cmd.Printf("  Bucket: %s\n", configStore.GetString(driven.SettingS3Bucket))
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	value, err := parseSettingValue(key, raw)
	if err != nil {
		return err
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, raw)
	return nil
}

// parseSettingValue converts the raw CLI string into the type the
// setting expects.
func parseSettingValue(key, raw string) (any, error) {
	switch key {
	case driven.SettingOCRLangs:
		parts := strings.Split(raw, ",")
		langs := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				langs = append(langs, p)
			}
		}
		if len(langs) == 0 {
			return nil, fmt.Errorf("no languages in %q", raw)
		}
		return langs, nil

	case driven.SettingOCRTimeout, driven.SettingOCRWorkers, driven.SettingOCRDPI:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return n, nil

	case driven.SettingOCRRate:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("%s must be a non-negative number", key)
		}
		return f, nil

	case driven.SettingS3UseSSL:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return b, nil

	default:
		return raw, nil
	}
}

func intSetting(key string) string {
	if n := configStore.GetInt(key); n > 0 {
		return strconv.Itoa(n)
	}
	return ""
}

func floatSetting(key string) string {
	if f := configStore.GetFloat(key); f > 0 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return ""
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback + " (default)"
	}
	return value
}
