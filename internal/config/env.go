package config

import (
	"os"
	"strings"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// EnvSettings reads settings from environment variables. The key
// "log.max_size_mb" with prefix "INVTRACK" is read from
// INVTRACK_LOG_MAX_SIZE_MB.
type EnvSettings struct {
	Prefix string
}

// GetSetting returns the environment value for key, or "" when unset.
func (e EnvSettings) GetSetting(key string) (string, error) {
	return os.Getenv(e.VarName(key)), nil
}

// VarName returns the environment variable name backing key.
func (e EnvSettings) VarName(key string) string {
	name := strings.ToUpper(envKeyReplacer.Replace(key))
	if e.Prefix == "" {
		return name
	}
	return strings.ToUpper(e.Prefix) + "_" + name
}
