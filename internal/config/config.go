// Package config reads server and CLI settings from the environment,
// after loading a .env file when one exists.
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"Deckframe/internal/calc/span"
	deckerr "Deckframe/internal/errors"
)

type Config struct {
	Addr        string
	TLSCert     string
	TLSKey      string
	DatabaseURL string
	TokenKey    string
	SpanTables  string
	LogLevel    log.Level
	StaticDir   string
}

// Load reads .env files (missing files are fine) and then the
// environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, deckerr.Wrap(deckerr.ErrCodeInvalidInput, err, "reading .env")
	}

	c := Config{
		Addr:        getenv("ADDR", ":8443"),
		TLSCert:     getenv("TLS_CERT", "server.crt"),
		TLSKey:      getenv("TLS_KEY", "server.key"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		TokenKey:    os.Getenv("TOKEN_KEY"),
		SpanTables:  os.Getenv("SPAN_TABLES"),
		StaticDir:   getenv("STATIC_DIR", "./static"),
		LogLevel:    log.InfoLevel,
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsed, err := log.ParseLevel(strings.ToLower(lvl))
		if err != nil {
			return Config{}, deckerr.Wrap(deckerr.ErrCodeInvalidInput, err, "LOG_LEVEL %q", lvl)
		}
		c.LogLevel = parsed
	}
	return c, nil
}

// RequireServer checks the settings only the HTTP server needs.
func (c Config) RequireServer() error {
	if c.TokenKey == "" {
		return deckerr.New(deckerr.ErrCodeInvalidInput, "TOKEN_KEY environment variable is not set")
	}
	return nil
}

// TLS reports whether both certificate files are present.
func (c Config) TLS() bool {
	return fileExists(c.TLSCert) && fileExists(c.TLSKey)
}

// Tables returns the span tables from SpanTables, or the embedded
// defaults when it is empty.
func (c Config) Tables() (*span.Tables, error) {
	if c.SpanTables == "" {
		return span.Default(), nil
	}
	return span.Load(c.SpanTables)
}

// NewLogger returns a logger writing to w at c.LogLevel.
func (c Config) NewLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           c.LogLevel,
	})
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
