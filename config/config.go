// Package config loads luminc build settings from .env, the environment and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// Config holds one luminc invocation's settings.
type Config struct {
	Entry     string
	Format    string
	Extension string
	CacheSize int
	Verbose   bool
}

// Load reads .env (if present), LUMIN_* variables, then parses args. Flags
// override the environment. The entry may be given with -in or as the first
// positional argument.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cacheDefault, err := envInt("LUMIN_VALIDATION_CACHE", 1024)
	if err != nil {
		return nil, err
	}
	verboseDefault, err := envBool("LUMIN_VERBOSE", false)
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("luminc", flag.ContinueOnError)
	entry := fs.String("in", "", "The entry component file.")
	format := fs.String("format", firstNonEmpty(env("LUMIN_FORMAT"), FormatPretty), "Output format: pretty or json.")
	ext := fs.String("ext", firstNonEmpty(env("LUMIN_EXTENSION"), ".lumin"), "Component file extension.")
	cache := fs.Int("cache", cacheDefault, "Maximum number of cached snippet validations per build.")
	verbose := fs.Bool("v", verboseDefault, "Enable debug logging.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		Entry:     *entry,
		Format:    strings.ToLower(strings.TrimSpace(*format)),
		Extension: strings.TrimSpace(*ext),
		CacheSize: *cache,
		Verbose:   *verbose,
	}
	if cfg.Entry == "" && fs.NArg() > 0 {
		cfg.Entry = fs.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	var errs []error
	if c.Entry == "" {
		errs = append(errs, errors.New("an entry component is required (-in)"))
	}
	if c.Format != FormatPretty && c.Format != FormatJSON {
		errs = append(errs, fmt.Errorf("unknown format %q (expected %s or %s)", c.Format, FormatPretty, FormatJSON))
	}
	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		errs = append(errs, fmt.Errorf("extension %q must start with '.'", c.Extension))
	}
	if c.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("cache size must be positive, got %d", c.CacheSize))
	}
	return errors.Join(errs...)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envInt(key string, def int) (int, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
