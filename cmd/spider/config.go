package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAMLLoader is a kong.ConfigurationLoader for YAML files. Top-level keys set
// global flags; a mapping named after a command sets that command's flags:
//
//	store: sqlite
//	crawl:
//	  workers: 16
//	  idle-timeout: 10s
func YAMLLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var f kong.ResolverFunc = func(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		scope := values
		if parent != nil && parent.Command != nil {
			section, ok := values[parent.Command.Name].(map[string]any)
			if !ok {
				return nil, nil
			}
			scope = section
		}
		raw, ok := lookup(scope, flag.Name)
		if !ok {
			return nil, nil
		}
		return configValue(raw), nil
	}
	return f, nil
}

// lookup finds name as written or with dashes replaced by underscores.
func lookup(values map[string]any, name string) (any, bool) {
	if v, ok := values[name]; ok {
		return v, true
	}
	v, ok := values[strings.ReplaceAll(name, "-", "_")]
	return v, ok
}

// configValue renders a YAML value in the string form kong parses from the
// command line.
func configValue(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
