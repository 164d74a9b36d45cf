// Package config holds the typed settings of the magcorpus pipeline.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Validation errors.
var (
	ErrNoDataRoot   = errors.New("data.root is required")
	ErrTimeout      = errors.New("fetch.timeout must be > 0")
	ErrDelayRange   = errors.New("fetch.delay_min must not exceed fetch.delay_max")
	ErrNegative     = errors.New("negative value")
	ErrSiteURL      = errors.New("site url must be absolute http(s)")
	ErrUnknownSite  = errors.New("unknown site")
	ErrNoScheduling = errors.New("fetch.schedule must not be empty")
)

// Site names accepted by the CLI.
const (
	SiteSpiegel = "spiegel"
	SiteStern   = "stern"
)

// Config captures every setting of one pipeline run.
type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Log        LogConfig        `mapstructure:"log"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Spiegel    SiteConfig       `mapstructure:"spiegel"`
	Stern      SternConfig      `mapstructure:"stern"`
	Extract    ExtractConfig    `mapstructure:"extract"`
	Provenance ProvenanceConfig `mapstructure:"provenance"`
	Publish    PublishConfig    `mapstructure:"publish"`
	Server     ServerConfig     `mapstructure:"server"`
}

// DataConfig locates the persisted state.
type DataConfig struct {
	Root string `mapstructure:"root"`
}

// LogConfig controls zap output. An empty File selects the per-site
// default below the data root.
type LogConfig struct {
	File        string `mapstructure:"file"`
	Development bool   `mapstructure:"development"`
}

// FetchConfig configures the HTTP session shared by discovery and download.
type FetchConfig struct {
	UserAgent     string          `mapstructure:"user_agent"`
	RespectRobots bool            `mapstructure:"respect_robots"`
	Timeout       time.Duration   `mapstructure:"timeout"`
	DelayMin      time.Duration   `mapstructure:"delay_min"`
	DelayMax      time.Duration   `mapstructure:"delay_max"`
	Schedule      []time.Duration `mapstructure:"schedule"`
	MaxRetries    int             `mapstructure:"max_retries"`
	MaxRPS        float64         `mapstructure:"max_rps"`
}

// SiteConfig locates one archive.
type SiteConfig struct {
	ArchiveURL string `mapstructure:"archive_url"`
	Origin     string `mapstructure:"origin"`
}

// SternConfig adds the month walk settings to SiteConfig.
type SternConfig struct {
	SiteConfig `mapstructure:",squash"`
	Denylist   []string      `mapstructure:"denylist"`
	MonthPause time.Duration `mapstructure:"month_pause"`
}

// ExtractConfig sizes the extraction pool. Zero picks the CPU count.
type ExtractConfig struct {
	Workers int `mapstructure:"workers"`
}

// ProvenanceConfig fills the general metadata of every year file.
type ProvenanceConfig struct {
	ScraperName         string `mapstructure:"scraper_name"`
	InstitutionName     string `mapstructure:"institution_name"`
	SupervisorPrimary   string `mapstructure:"supervisor_primary"`
	SupervisorSecondary string `mapstructure:"supervisor_secondary"`
}

// PublishConfig selects the bucket year files are mirrored to. Publishing
// is off while Bucket is empty.
type PublishConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

// Enabled reports whether a bucket is configured.
func (p PublishConfig) Enabled() bool {
	return strings.TrimSpace(p.Bucket) != ""
}

// ServerConfig controls the optional ops endpoint. Empty Addr disables it.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces required values and sane limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Data.Root) == "" {
		return ErrNoDataRoot
	}
	if c.Fetch.Timeout <= 0 {
		return ErrTimeout
	}
	if c.Fetch.DelayMin < 0 || c.Fetch.DelayMax < 0 {
		return fmt.Errorf("fetch delay: %w", ErrNegative)
	}
	if c.Fetch.DelayMin > c.Fetch.DelayMax {
		return ErrDelayRange
	}
	if len(c.Fetch.Schedule) == 0 {
		return ErrNoScheduling
	}
	if c.Fetch.MaxRetries < 0 || c.Fetch.MaxRPS < 0 {
		return fmt.Errorf("fetch limits: %w", ErrNegative)
	}
	if c.Extract.Workers < 0 {
		return fmt.Errorf("extract.workers: %w", ErrNegative)
	}
	if c.Stern.MonthPause < 0 {
		return fmt.Errorf("stern.month_pause: %w", ErrNegative)
	}
	for _, raw := range []string{c.Spiegel.ArchiveURL, c.Spiegel.Origin, c.Stern.ArchiveURL, c.Stern.Origin} {
		if err := checkURL(raw); err != nil {
			return err
		}
	}
	return nil
}

// CheckSite returns ErrUnknownSite for anything but the two archives.
func CheckSite(site string) error {
	switch site {
	case SiteSpiegel, SiteStern:
		return nil
	}
	return fmt.Errorf("%w %q (want %s or %s)", ErrUnknownSite, site, SiteSpiegel, SiteStern)
}

func checkURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrSiteURL, raw)
	}
	return nil
}
