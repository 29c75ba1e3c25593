package cli

// These variables are set by the main package from the global flags.
var (
	ConfigPath *string
	NoColor    *bool
	LogLevel   *string
)

func configPathFlag() string {
	if ConfigPath != nil {
		return *ConfigPath
	}
	return ""
}

func noColorFlag() bool {
	return NoColor != nil && *NoColor
}

func logLevelFlag() string {
	if LogLevel != nil {
		return *LogLevel
	}
	return ""
}
