package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeDuration
	TypeString
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDuration:
		return "duration"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// ConfigKeySchema describes a known configuration key.
type ConfigKeySchema struct {
	Path        string
	Type        ConfigValueType
	Description string
	Default     interface{}
}

// KnownKeys is the registry of all configuration keys.
var KnownKeys = map[string]ConfigKeySchema{
	"file": {
		Path:        "file",
		Type:        TypeString,
		Description: "Changelog file used when a command is given no path",
		Default:     "CHANGELOG.md",
	},
	"encoding": {
		Path:        "encoding",
		Type:        TypeString,
		Description: "Text encoding of changelog files (IANA name)",
		Default:     "utf-8",
	},
	"header_file": {
		Path:        "header_file",
		Type:        TypeString,
		Description: "File whose content replaces the default header when formatting",
		Default:     "",
	},
	"plain": {
		Path:        "plain",
		Type:        TypeBool,
		Description: "Disable colors and decorations in output",
		Default:     false,
	},
	"jobs": {
		Path:        "jobs",
		Type:        TypeInt,
		Description: "Maximum number of files validated concurrently (1-64)",
		Default:     4,
	},
	"remote": {
		Path:        "remote",
		Type:        TypeString,
		Description: "Git remote used to derive the repository URL for compare links",
		Default:     "origin",
	},
	"repo_url": {
		Path:        "repo_url",
		Type:        TypeString,
		Description: "Repository URL for compare links (overrides the git remote)",
		Default:     "",
	},
	"tag_prefix": {
		Path:        "tag_prefix",
		Type:        TypeString,
		Description: "Prefix of release tags in compare links",
		Default:     "v",
	},
	"remote_timeout": {
		Path:        "remote_timeout",
		Type:        TypeDuration,
		Description: "Timeout for fetching remote changelogs (e.g. 10s, 1m)",
		Default:     "10s",
	},
}

// SortedKeys returns the known keys in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// ParsedValue represents a configuration value after validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}

	switch schema.Type {
	case TypeBool:
		switch strings.ToLower(value) {
		case "true":
			return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
		case "false":
			return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
		}
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	case TypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return ParsedValue{}, fmt.Errorf("invalid integer: %q", value)
		}
		return ParsedValue{Raw: value, Parsed: n, Type: TypeInt}, nil
	case TypeDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return ParsedValue{}, fmt.Errorf("invalid duration: %q (examples: 10s, 1m30s)", value)
		}
		return ParsedValue{Raw: value, Parsed: d.String(), Type: TypeDuration}, nil
	default:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	}
}
