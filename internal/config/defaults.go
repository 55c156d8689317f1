package config

// GetDefault returns the default configuration. Out of the box every
// regular file is considered; size floors and exclude patterns are
// strictly opt-in so nothing is silently skipped.
func GetDefault() *Config {
	return &Config{
		Recursive:       false,
		SkipFingerprint: false,
		MinFileSize:     "",
		Workers:         0,
		ExcludePatterns: nil,
		OutputFormat:    "table",
		DryRun:          false,
		Verbose:         false,
	}
}
