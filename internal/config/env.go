package config

import (
	"os"
	"regexp"
)

// envVarRegex matches ${NAME} and ${NAME:-fallback}.
var envVarRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

func substituteEnvVars(content []byte) []byte {
	return envVarRegex.ReplaceAllFunc(content, func(match []byte) []byte {
		groups := envVarRegex.FindSubmatch(match)
		if value, exists := os.LookupEnv(string(groups[1])); exists {
			return []byte(value)
		}
		if groups[2] != nil {
			return groups[2]
		}
		return match
	})
}
