package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/altsource-updater/internal/api/github"
	"github.com/oshokin/altsource-updater/internal/domain/source"
)

// Config holds everything a single update run needs.
type Config struct {
	// ManifestPath is the apps.json file that is read and rewritten.
	ManifestPath string `yaml:"manifest"`
	// APIBaseURL is the root of the GitHub REST API.
	APIBaseURL string `yaml:"api_url"`
	// Timeout bounds every release request.
	Timeout time.Duration `yaml:"timeout"`
	// Sources lists the tracked applications in processing order.
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig is the YAML form of a source descriptor.
type SourceConfig struct {
	// Name is the display name and the manifest key.
	Name string `yaml:"name"`
	// Repository is the upstream "owner/repo".
	Repository string `yaml:"repo"`
	// Asset is ".ipa" for any IPA file, or an exact filename.
	Asset string `yaml:"asset,omitempty"`
	// AssetGlob is a doublestar pattern used instead of Asset.
	AssetGlob string `yaml:"asset_glob,omitempty"`
}

const (
	// DefaultConfigFilename is the filename suggested by "config init".
	DefaultConfigFilename = "altsource-updater.yaml"

	// DefaultManifestFilename is the manifest path relative to the working directory.
	DefaultManifestFilename = "apps.json"

	// DefaultAPIBaseURL is the public GitHub REST API.
	DefaultAPIBaseURL = github.DefaultBaseURL

	// DefaultTimeout is the default duration of one release request.
	DefaultTimeout = github.DefaultCallTimeout

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNoSources is returned when no source is configured.
	errNoSources = errors.New("at least one source must be configured")
	// errDuplicateSource is returned when two sources share a name.
	errDuplicateSource = errors.New("duplicate source name")
	// errAmbiguousAsset is returned when both or neither asset rules are set.
	errAmbiguousAsset = errors.New("exactly one of asset and asset_glob must be set")
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ManifestPath: DefaultManifestFilename,
		APIBaseURL:   DefaultAPIBaseURL,
		Timeout:      DefaultTimeout,
		Sources: []SourceConfig{
			{
				Name:       "RedditFilter",
				Repository: "level3tjg/RedditFilter",
				Asset:      source.SuffixIPA,
			},
			{
				Name:       "BTLoader (Kettu Discord mod)",
				Repository: "CloudySn0w/BTLoader",
				Asset:      "discord.ipa",
			},
		},
	}
}

// Load reads configuration from the provided path and validates it.
// An empty path yields the built-in configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, Validate(cfg)
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the settings.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ManifestPath == "" {
		cfg.ManifestPath = DefaultManifestFilename
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}

	_, err := cfg.DomainSources()

	return err
}

// DomainSources converts the configured sources, preserving their order.
func (c *Config) DomainSources() ([]source.Source, error) {
	if len(c.Sources) == 0 {
		return nil, errNoSources
	}

	var (
		result = make([]source.Source, 0, len(c.Sources))
		seen   = make(map[string]struct{}, len(c.Sources))
	)

	for _, sc := range c.Sources {
		src, err := sc.toDomain()
		if err != nil {
			return nil, err
		}

		if _, dup := seen[src.Name]; dup {
			return nil, fmt.Errorf("%s: %w", src.Name, errDuplicateSource)
		}

		seen[src.Name] = struct{}{}

		result = append(result, src)
	}

	return result, nil
}

// toDomain builds and validates a source descriptor.
func (sc SourceConfig) toDomain() (source.Source, error) {
	if (sc.Asset == "") == (sc.AssetGlob == "") {
		return source.Source{}, fmt.Errorf("source %q: %w", sc.Name, errAmbiguousAsset)
	}

	var (
		rule source.AssetRule
		err  error
	)

	if sc.AssetGlob != "" {
		rule, err = source.GlobRule(sc.AssetGlob)
	} else {
		rule, err = source.ParseAssetRule(sc.Asset)
	}

	if err != nil {
		return source.Source{}, fmt.Errorf("source %q: %w", sc.Name, err)
	}

	src := source.Source{
		Name:       sc.Name,
		Repository: sc.Repository,
		Asset:      rule,
	}

	if err = src.Validate(); err != nil {
		return source.Source{}, fmt.Errorf("invalid source: %w", err)
	}

	return src, nil
}
