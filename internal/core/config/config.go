// Package config handles configuration loading and validation for flypanel.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/flypanel/internal/core/dispatch"
	"github.com/colonyops/flypanel/internal/core/infotip"
	"github.com/colonyops/flypanel/internal/core/modal"
	"github.com/colonyops/flypanel/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	HTTP      HTTPConfig      `yaml:"http"`
	Infotip   InfotipConfig   `yaml:"infotip"`
	Modal     ModalConfig     `yaml:"modal"`
	Strings   Strings         `yaml:"strings"`
	TUI       TUIConfig       `yaml:"tui"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	DataDir   string          `yaml:"-"` // set by caller, not from config file
}

// ServerConfig locates the web server.
type ServerConfig struct {
	URL       string `yaml:"url"`        // base URL, e.g. http://localhost:8080
	StartPage string `yaml:"start_page"` // path opened on startup
}

// HTTPConfig tunes the transport.
type HTTPConfig struct {
	// Timeout bounds each call. Zero means calls never time out.
	Timeout time.Duration `yaml:"timeout"`
}

// InfotipConfig tunes the notification queue.
type InfotipConfig struct {
	TTL time.Duration `yaml:"ttl"`
	// RejectStale drops a response when a newer one for the same anchor has
	// already been shown.
	RejectStale bool `yaml:"reject_stale"`
}

// ModalConfig tunes the dialog.
type ModalConfig struct {
	Icon string `yaml:"icon"`
}

// Strings are the user-visible texts, normally localized by the server.
type Strings struct {
	CopyMagnet       string `yaml:"copy_magnet"`
	ConfirmRemove    string `yaml:"confirm_remove"`
	TransportFailure string `yaml:"transport_failure"`
	Yes              string `yaml:"yes"`
	No               string `yaml:"no"`
	OK               string `yaml:"ok"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme       string `yaml:"theme"`
	HistorySize int    `yaml:"history_size"` // notifications kept in the history view
}

// ClipboardConfig selects how magnet links are copied.
type ClipboardConfig struct {
	// Command receives the text on stdin. Empty uses the platform default.
	Command string `yaml:"command"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	ds := dispatch.DefaultStrings()
	labels := modal.DefaultLabels()
	return Config{
		Server: ServerConfig{
			URL:       "http://localhost:8080",
			StartPage: "/search",
		},
		Infotip: InfotipConfig{
			TTL: infotip.DefaultTTL,
		},
		Modal: ModalConfig{
			Icon: modal.DefaultIcon,
		},
		Strings: Strings{
			CopyMagnet:       ds.CopyMagnet,
			ConfirmRemove:    ds.ConfirmRemove,
			TransportFailure: ds.TransportFailure,
			Yes:              labels.Yes,
			No:               labels.No,
			OK:               labels.OK,
		},
		TUI: TUIConfig{
			Theme:       styles.DefaultTheme,
			HistorySize: 100,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Server.StartPage == "" {
		c.Server.StartPage = d.Server.StartPage
	}
	if c.Infotip.TTL == 0 {
		c.Infotip.TTL = d.Infotip.TTL
	}
	if c.Modal.Icon == "" {
		c.Modal.Icon = d.Modal.Icon
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.HistorySize == 0 {
		c.TUI.HistorySize = d.TUI.HistorySize
	}

	s := &c.Strings
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&s.CopyMagnet, d.Strings.CopyMagnet},
		{&s.ConfirmRemove, d.Strings.ConfirmRemove},
		{&s.TransportFailure, d.Strings.TransportFailure},
		{&s.Yes, d.Strings.Yes},
		{&s.No, d.Strings.No},
		{&s.OK, d.Strings.OK},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
}

// StartURL returns the absolute URL of the start page.
func (c *Config) StartURL() string {
	return c.PageURL(c.Server.StartPage)
}

// PageURL resolves a server path against the configured base URL.
func (c *Config) PageURL(path string) string {
	base, err := url.Parse(c.Server.URL)
	if err != nil {
		return path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return base.ResolveReference(ref).String()
}

// DispatchStrings returns the texts the dispatcher shows.
func (c *Config) DispatchStrings() dispatch.Strings {
	return dispatch.Strings{
		CopyMagnet:       c.Strings.CopyMagnet,
		ConfirmRemove:    c.Strings.ConfirmRemove,
		TransportFailure: c.Strings.TransportFailure,
	}
}

// ModalLabels returns the dialog button captions.
func (c *Config) ModalLabels() modal.Labels {
	return modal.Labels{Yes: c.Strings.Yes, No: c.Strings.No, OK: c.Strings.OK}
}

func isHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func isAbsPath(p string) error {
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("must start with /")
	}
	return nil
}
