package config

// GetDefaultConfigTemplate returns a commented config template listing every
// option with its default value.
func GetDefaultConfigTemplate() string {
	return `# kacl configuration
# See 'kacl config keys' for all options

# Changelog settings
file: CHANGELOG.md                    # Changelog used when no path is given
encoding: utf-8                       # IANA name of the file encoding
header_file: ""                       # Custom header for 'kacl fmt' (empty = default header)

# Output settings
plain: false                          # Disable colors and decorations

# Validation settings
jobs: 4                               # Files validated concurrently (1-64)
remote_timeout: 10s                   # Timeout for remote changelogs

# Compare link settings
remote: origin                        # Git remote used for the repository URL
repo_url: ""                          # Explicit repository URL (overrides remote)
tag_prefix: v                         # Release tag prefix
`
}

// GetDefaults returns the default configuration values keyed by config key.
func GetDefaults() map[string]interface{} {
	defaults := make(map[string]interface{}, len(KnownKeys))
	for key, schema := range KnownKeys {
		defaults[key] = schema.Default
	}
	return defaults
}
