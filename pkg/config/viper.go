// Package config bootstraps the Viper instance behind the magcorpus CLI.
// Settings come from built-in defaults, an optional config file and
// MAGCORPUS_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MAGCORPUS_DATA_ROOT.
const EnvPrefix = "MAGCORPUS"

// DefaultUserAgent identifies the harvester to the archive servers.
const DefaultUserAgent = "magazine-corpus/1.0 (+https://github.com/JakeFAU/magazine-corpus)"

// DefaultSchedule is the pause after each consecutive timeout.
var DefaultSchedule = []time.Duration{
	1 * time.Minute, 2 * time.Minute, 3 * time.Minute, 4 * time.Minute, 5 * time.Minute,
	10 * time.Minute, 20 * time.Minute, 30 * time.Minute, 60 * time.Minute, 120 * time.Minute,
}

// New returns a Viper instance holding the defaults, the environment and,
// when present, the config file. An explicit cfgFile must exist; without one
// a missing config.yaml in the search path is not an error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.magcorpus")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// SetDefaults registers the default of every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.root", "data")
	v.SetDefault("log.file", "")
	v.SetDefault("log.development", false)

	v.SetDefault("fetch.user_agent", DefaultUserAgent)
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.delay_min", 200*time.Millisecond)
	v.SetDefault("fetch.delay_max", 800*time.Millisecond)
	v.SetDefault("fetch.schedule", DefaultSchedule)
	v.SetDefault("fetch.max_retries", 0)
	v.SetDefault("fetch.max_rps", 0.0)

	v.SetDefault("spiegel.archive_url", "https://www.spiegel.de/spiegel/print/")
	v.SetDefault("spiegel.origin", "https://www.spiegel.de")
	v.SetDefault("stern.archive_url", "https://www.stern.de/archiv/")
	v.SetDefault("stern.origin", "https://www.stern.de")
	v.SetDefault("stern.denylist", []string{"noch-fragen"})
	v.SetDefault("stern.month_pause", 500*time.Millisecond)

	v.SetDefault("extract.workers", 0)

	v.SetDefault("provenance.scraper_name", "")
	v.SetDefault("provenance.institution_name", "")
	v.SetDefault("provenance.supervisor_primary", "")
	v.SetDefault("provenance.supervisor_secondary", "")

	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "")

	v.SetDefault("server.addr", "")
}
