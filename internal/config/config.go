// Package config assembles the process configuration. Secrets and
// sender identity come from the environment; components receive
// explicit structs and never read the environment themselves.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Mail is the delivery configuration handed to the SendGrid sender.
// An empty APIKey makes sends fail; nothing else gates on it.
type Mail struct {
	FromEmail string
	FromName  string
	APIKey    string
}

// Config is the full process configuration.
type Config struct {
	Addr      string // HTTP listen address
	DataDir   string // session CSV, annotated PNGs, PDF sheets
	ImagesDir string // fixed backgrounds and the optional logo

	PDFSheet    bool // write the printable summary sheet on save
	EmbedImages bool // additionally inline the diagrams in the email body
	Debug       bool

	Mail Mail
}

// FromEnv reads the environment surface. Call it after the .env file
// has had a chance to populate the environment.
func FromEnv() Config {
	return Config{
		Addr:        envOr("EQUIMARK_ADDR", "localhost:8780"),
		DataDir:     envOr("EQUIMARK_DATA_DIR", "data"),
		ImagesDir:   envOr("EQUIMARK_IMAGES_DIR", "images"),
		PDFSheet:    envBool("EQUIMARK_PDF_SHEET", true),
		EmbedImages: envBool("EQUIMARK_EMBED_IMAGES", false),
		Debug:       envBool("EQUIMARK_DEBUG", false),
		Mail: Mail{
			FromEmail: os.Getenv("FROM_EMAIL"),
			FromName:  os.Getenv("FROM_NAME"),
			APIKey:    os.Getenv("SENDGRID_API_KEY"),
		},
	}
}

// CSVPath is the record store location inside DataDir.
func (c Config) CSVPath() string { return filepath.Join(c.DataDir, "session_data.csv") }

// LogoPath is the optional email logo.
func (c Config) LogoPath() string { return filepath.Join(c.ImagesDir, "logo.png") }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
