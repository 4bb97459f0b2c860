package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/byte4ever/gitreq/remote"
)

// DefaultFormat is the default list line template.
const DefaultFormat = "{id}\t{title}"

// Host pins a provider to a domain.
type Host struct {
	Provider string `toml:"provider"`
	// APIRoot is the GitLab instance URL, the GitHub
	// REST base or the Bitbucket repositories endpoint.
	APIRoot string `toml:"api_root"`
}

// Kind returns the parsed provider kind.
func (h Host) Kind() (remote.Kind, error) {
	return remote.ParseKind(h.Provider)
}

// Config holds the git-req configuration.
type Config struct {
	Format string          `toml:"format"`
	Hosts  map[string]Host `toml:"hosts"`
}

// Default returns the configuration used when no file
// exists.
func Default() Config {
	return Config{
		Format: DefaultFormat,
		Hosts:  map[string]Host{},
	}
}

// Host returns the override for domain. Domains match
// case-insensitively.
func (c Config) Host(domain string) (Host, bool) {
	for name, h := range c.Hosts {
		if strings.EqualFold(name, domain) {
			return h, true
		}
	}

	return Host{}, false
}

// Path returns the location of the config file.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "git-req", "config.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating config: %w", err)
	}

	return filepath.Join(home, ".config", "git-req", "config.toml"), nil
}

// Load reads the config file at Path. It returns
// Default() when the file does not exist and an error
// only when it exists but is invalid.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}

	return LoadFile(path)
}

// LoadFile reads the config file at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return Default(), fmt.Errorf(
			"failed to read config file: %w", err,
		)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes and validates TOML config data. Keys
// git-req does not know are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Default(), fmt.Errorf(
			"failed to parse config file: %w", err,
		)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}

		sort.Strings(keys)

		return Default(), fmt.Errorf(
			"unknown config keys: %s",
			strings.Join(keys, ", "),
		)
	}

	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}

	if cfg.Hosts == nil {
		cfg.Hosts = map[string]Host{}
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}

	return cfg, nil
}

// Validate checks every host entry.
func (c Config) Validate() error {
	for domain, h := range c.Hosts {
		if _, err := h.Kind(); err != nil {
			return fmt.Errorf("hosts.%q: %w", domain, err)
		}

		if h.APIRoot == "" {
			continue
		}

		u, err := url.Parse(h.APIRoot)
		if err != nil || u.Host == "" ||
			(u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf(
				"hosts.%q: invalid api_root %q: "+
					"must be an http(s) URL",
				domain, h.APIRoot,
			)
		}
	}

	return nil
}
