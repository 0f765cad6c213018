package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCleanup()
	c.normalizeConverter()
	c.normalizeRetriever()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.DownloadDir, err = expandPath(strings.TrimSpace(c.Paths.DownloadDir)); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCleanup() {
	c.Cleanup.SectionTitles = dedupeTrimmed(c.Cleanup.SectionTitles, false)
	if len(c.Cleanup.SectionTitles) == 0 {
		c.Cleanup.SectionTitles = DefaultSectionTitles()
	}
	c.Cleanup.SpeakerTitles = dedupeTrimmed(c.Cleanup.SpeakerTitles, false)
	if len(c.Cleanup.SpeakerTitles) == 0 {
		c.Cleanup.SpeakerTitles = DefaultSpeakerTitles()
	}
	if c.Cleanup.Jobs <= 0 {
		c.Cleanup.Jobs = defaultCleanupJobs
	}
}

func (c *Config) normalizeConverter() {
	c.Converter.DefaultLanguage = strings.TrimSpace(c.Converter.DefaultLanguage)
	if c.Converter.DefaultLanguage == "" {
		c.Converter.DefaultLanguage = defaultLanguage
	}
}

func (c *Config) normalizeRetriever() {
	c.Retriever.RawBaseURL = strings.TrimSpace(c.Retriever.RawBaseURL)
	if c.Retriever.RawBaseURL == "" {
		c.Retriever.RawBaseURL = defaultRawBaseURL
	}
	if !strings.HasSuffix(c.Retriever.RawBaseURL, "/") {
		c.Retriever.RawBaseURL += "/"
	}
	c.Retriever.GitHubToken = strings.TrimSpace(c.Retriever.GitHubToken)
	if c.Retriever.GitHubToken == "" {
		if value, ok := os.LookupEnv(githubTokenEnvVar); ok {
			c.Retriever.GitHubToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv(githubTokenFallbackEnvVar); ok {
			c.Retriever.GitHubToken = strings.TrimSpace(value)
		}
	}
	c.Retriever.StorageURL = strings.TrimSpace(c.Retriever.StorageURL)
	if c.Retriever.StorageURL == "" {
		if value, ok := os.LookupEnv(storageURLEnvVar); ok {
			c.Retriever.StorageURL = strings.TrimSpace(value)
		}
	}
	c.Retriever.UserAgent = strings.TrimSpace(c.Retriever.UserAgent)
	if c.Retriever.UserAgent == "" {
		c.Retriever.UserAgent = defaultUserAgent
	}
	if c.Retriever.TimeoutSeconds <= 0 {
		c.Retriever.TimeoutSeconds = defaultRetrieverTimeout
	}
}

func (c *Config) normalizeLedger() error {
	var err error
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = defaultLedgerPath()
	}
	if c.Ledger.Path, err = expandPath(strings.TrimSpace(c.Ledger.Path)); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func dedupeTrimmed(values []string, lower bool) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if lower {
			normalized = strings.ToLower(normalized)
		}
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
