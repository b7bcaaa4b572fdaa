package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/flypanel/internal/core/styles"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if err := isHTTPURL(c.Server.URL); err != nil {
		errs = errs.Append("server.url", err)
	}
	if err := isAbsPath(c.Server.StartPage); err != nil {
		errs = errs.Append("server.start_page", err)
	}
	if c.HTTP.Timeout < 0 {
		errs = errs.Append("http.timeout", fmt.Errorf("must not be negative"))
	}
	if c.Infotip.TTL <= 0 {
		errs = errs.Append("infotip.ttl", fmt.Errorf("must be positive"))
	}
	if c.TUI.HistorySize < 0 {
		errs = errs.Append("tui.history_size", fmt.Errorf("must not be negative"))
	}
	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		errs = errs.Append("tui.theme", fmt.Errorf("unknown theme %q (available: %s)", c.TUI.Theme, strings.Join(styles.ThemeNames(), ", ")))
	}

	return errs.ToError()
}

// ValidateDeep performs Validate and then checks the files the configuration
// refers to. The configPath argument specifies the config file location to
// validate (empty string skips config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.HTTP.Timeout == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "HTTP",
			Item:     "http.timeout",
			Message:  "no timeout set; a request to an unresponsive server never completes",
		})
	}
	if strings.HasPrefix(c.Server.URL, "http://") && !isLoopback(c.Server.URL) {
		warnings = append(warnings, ValidationWarning{
			Category: "Server",
			Item:     "server.url",
			Message:  "plain http to a remote host sends the session cookie unencrypted",
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func isLoopback(raw string) bool {
	for _, h := range []string{"://localhost", "://127.", "://[::1]"} {
		if strings.Contains(raw, h) {
			return true
		}
	}
	return false
}
