package config

import (
	"os"
	"regexp"
)

// envVarPattern matches ${VAR} and $VAR patterns
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}|\$([A-Za-z0-9_]+)`)

// ExpandEnv replaces ${VAR} and $VAR with environment variables
// Example: "Bearer ${LINGSHU_SERVER_API}" → "Bearer sk-abc123..."
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR} or $VAR
		varName := ""
		if match[1] == '{' {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		// Return environment variable value, or empty string if not set
		return os.Getenv(varName)
	})
}
