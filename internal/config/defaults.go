package config

const (
	defaultConfigPath         = "~/.config/clamsutils/config.toml"
	projectConfigName         = "clamsutils.toml"
	defaultLanguage           = "en-US"
	defaultRawBaseURL         = "https://raw.githubusercontent.com/"
	defaultUserAgent          = "clamsutils/dev"
	defaultRetrieverTimeout   = 60
	defaultCleanupJobs        = 1
	maxCleanupJobs            = 64
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	storageURLEnvVar          = "AAPB_STORAGE_URL"
	githubTokenEnvVar         = "GITHUB_TOKEN"
	githubTokenFallbackEnvVar = "GH_TOKEN"
)

// DefaultSectionTitles lists the NewsHour section headings removed when they
// occupy a whole line.
func DefaultSectionTitles() []string {
	return []string{
		"INTRO",
		"NEWSMAKER",
		"NEWS SUMMARY",
		"CONVERSATION",
		"BRIG.",
		"RECAP",
	}
}

// DefaultSpeakerTitles lists the honorific abbreviations stripped around
// speaker names.
func DefaultSpeakerTitles() []string {
	return []string{"Rep.", "Dr.", "Sen.", "Mr.", "Ms.", "Mrs.", "Prof.", "Pres.", "Gen."}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Cleanup: Cleanup{
			SectionTitles: DefaultSectionTitles(),
			SpeakerTitles: DefaultSpeakerTitles(),
			Jobs:          defaultCleanupJobs,
		},
		Converter: Converter{
			DefaultLanguage: defaultLanguage,
		},
		Retriever: Retriever{
			RawBaseURL:     defaultRawBaseURL,
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultRetrieverTimeout,
		},
		Ledger: Ledger{
			Path: defaultLedgerPath(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
