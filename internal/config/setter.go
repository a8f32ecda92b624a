package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SetValue validates value against the schema of key and writes it into the
// YAML config file at path, creating the file if needed. Comments and other
// keys in an existing file are preserved.
func SetValue(path, key, value string) (ParsedValue, error) {
	parsed, err := ValidateValue(key, value)
	if err != nil {
		return ParsedValue{}, err
	}

	var root yaml.Node
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := ValidateYAMLSyntaxFromBytes(data, path); err != nil {
			return ParsedValue{}, err
		}
		if err := yaml.Unmarshal(data, &root); err != nil {
			return ParsedValue{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return ParsedValue{}, fmt.Errorf("reading %s: %w", path, err)
	}

	setScalar(&root, key, parsed)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return ParsedValue{}, fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return ParsedValue{}, fmt.Errorf("encoding %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ParsedValue{}, fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return ParsedValue{}, fmt.Errorf("writing %s: %w", path, err)
	}
	return parsed, nil
}

// setScalar sets key in the top-level mapping of root, adding the mapping
// or the key when missing.
func setScalar(root *yaml.Node, key string, value ParsedValue) {
	if root.Kind != yaml.DocumentNode {
		*root = yaml.Node{Kind: yaml.DocumentNode}
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	mapping := root.Content[0]

	node := scalarNode(value)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			node.LineComment = mapping.Content[i+1].LineComment
			mapping.Content[i+1] = node
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		node,
	)
}

func scalarNode(value ParsedValue) *yaml.Node {
	switch value.Type {
	case TypeBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(value.Parsed)}
	case TypeInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(value.Parsed)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(value.Parsed)}
	}
}
