package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCleanup(); err != nil {
		return err
	}
	if err := c.validateConverter(); err != nil {
		return err
	}
	if err := c.validateRetriever(); err != nil {
		return err
	}
	if err := c.validateLedger(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCleanup() error {
	if len(c.Cleanup.SectionTitles) == 0 {
		return errors.New("cleanup.section_titles must include at least one title")
	}
	if len(c.Cleanup.SpeakerTitles) == 0 {
		return errors.New("cleanup.speaker_titles must include at least one title")
	}
	for _, title := range c.Cleanup.SpeakerTitles {
		if strings.ContainsAny(title, " \t\n") {
			return fmt.Errorf("cleanup.speaker_titles: %q must be a single token", title)
		}
	}
	if c.Cleanup.Jobs < 1 || c.Cleanup.Jobs > maxCleanupJobs {
		return fmt.Errorf("cleanup.jobs must be between 1 and %d", maxCleanupJobs)
	}
	return nil
}

func (c *Config) validateConverter() error {
	if strings.TrimSpace(c.Converter.DefaultLanguage) == "" {
		return errors.New("converter.default_language must be set")
	}
	return nil
}

func (c *Config) validateRetriever() error {
	if err := validateHTTPURL("retriever.raw_base_url", c.Retriever.RawBaseURL); err != nil {
		return err
	}
	if c.Retriever.StorageURL != "" {
		if err := validateHTTPURL("retriever.storage_url", c.Retriever.StorageURL); err != nil {
			return err
		}
	}
	if c.Retriever.TimeoutSeconds <= 0 {
		return errors.New("retriever.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.Enabled && strings.TrimSpace(c.Ledger.Path) == "" {
		return errors.New("ledger.path must be set when ledger.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", field, value)
	}
	return nil
}
