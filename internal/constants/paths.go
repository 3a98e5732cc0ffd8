package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.forge/logs/forge.log
	CLILogFileName = "forge.log"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global FORGE configuration file.
	// This file is located in the FORGE home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the project-level directory holding config.yaml.
	ProjectConfigDir = ".forge"

	// ResultFileExt is the extension of persisted pipeline results.
	ResultFileExt = ".json"
)

// Environment variables.
const (
	// EnvForgeHome overrides the FORGE home directory.
	EnvForgeHome = "FORGE_HOME"

	// EnvPrefix is the prefix for configuration environment variables.
	EnvPrefix = "FORGE"
)
