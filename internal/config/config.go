// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the client needs to talk to the recipe backend
// and drive a cooking session.
type Config struct {
	APIURL        string        `env:"COOKFLOW_API_URL"        envDefault:"http://localhost:5000"`
	CSRFToken     string        `env:"COOKFLOW_CSRF_TOKEN"`
	SessionCookie string        `env:"COOKFLOW_SESSION_COOKIE"`
	HTTPTimeout   time.Duration `env:"COOKFLOW_HTTP_TIMEOUT"   envDefault:"10s"`
	ReportTimeout time.Duration `env:"COOKFLOW_REPORT_TIMEOUT" envDefault:"15s"`
	TickInterval  time.Duration `env:"COOKFLOW_TICK_INTERVAL"  envDefault:"1s"`
	NextLabel     string        `env:"COOKFLOW_NEXT_LABEL"     envDefault:"Next"`
	DoneLabel     string        `env:"COOKFLOW_DONE_LABEL"     envDefault:"Done"`
}

// Load reads dotenv files into the process environment (missing files are
// ignored, existing variables win) and parses the result.
func Load(dotenvFiles ...string) (Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid COOKFLOW_API_URL %q", c.APIURL)
	}
	for name, d := range map[string]time.Duration{
		"COOKFLOW_HTTP_TIMEOUT":   c.HTTPTimeout,
		"COOKFLOW_REPORT_TIMEOUT": c.ReportTimeout,
		"COOKFLOW_TICK_INTERVAL":  c.TickInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.NextLabel == "" || c.DoneLabel == "" {
		return errors.New("advance labels must not be empty")
	}
	return nil
}
