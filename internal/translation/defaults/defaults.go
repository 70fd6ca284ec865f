// Package defaults embeds the base-language dictionary.
package defaults

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// Code is the base language every translation starts from.
const Code = "en"

//go:embed en.yaml
var enYAML []byte

var parsed = sync.OnceValues(func() (map[string]string, error) {
	var strings map[string]string
	if err := yaml.Unmarshal(enYAML, &strings); err != nil {
		return nil, fmt.Errorf("parse embedded en.yaml: %w", err)
	}
	return strings, nil
})

// Strings returns a fresh copy of the base dictionary.
func Strings() map[string]string {
	m, err := parsed()
	if err != nil {
		panic(err)
	}
	return maps.Clone(m)
}

// Keys returns the dictionary keys in sorted order.
func Keys() []string {
	return slices.Sorted(maps.Keys(Strings()))
}
