package identity

import (
	"path/filepath"
	"strings"
)

const (
	BrandName = "termgif"
	// AppSlug is the canonical identifier for user-facing and on-disk state.
	// It intentionally matches the only supported CLI binary name.
	AppSlug = "termgif"
	CLIName = "termgif"

	// ProjectConfigFile is discovered by walking up from the working
	// directory; GlobalConfigFile lives under the user config dir.
	ProjectConfigFile = ".termgif.toml"
	GlobalConfigFile  = "config.toml"

	// ScriptExtension is the canonical recording script suffix.
	ScriptExtension = ".tg"

	// EnvPrefix namespaces all environment overrides (TERMGIF_LOG_LEVEL, ...).
	EnvPrefix = "TERMGIF_"
)

var inputAliases = []string{"tg"}

// ResolveBinaryName maps argv[0] onto the canonical CLI name.
func ResolveBinaryName(args []string) string {
	if len(args) == 0 {
		return CLIName
	}
	base := filepath.Base(strings.TrimSpace(args[0]))
	return NormalizeCLIName(base)
}

// NormalizeCLIName folds aliases and casing onto the canonical name.
func NormalizeCLIName(name string) string {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	trimmed = strings.TrimSuffix(trimmed, ".exe")
	if trimmed == "" {
		return CLIName
	}
	for _, alias := range inputAliases {
		if trimmed == alias {
			return CLIName
		}
	}
	return CLIName
}

// IsCLICommandToken reports whether a token names this binary.
func IsCLICommandToken(token string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(token))
	if trimmed == "" {
		return false
	}
	if trimmed == CLIName {
		return true
	}
	for _, alias := range inputAliases {
		if trimmed == alias {
			return true
		}
	}
	return false
}
