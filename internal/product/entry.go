package product

import (
	"fmt"
	"strings"
)

// ParseEntry parses a CLI product entry of the form
// "name=foo;namespace=bar;target-namespaces=ns1,ns2" into ordered pairs.
// Empty segments are skipped.
func ParseEntry(entry string) ([]Param, error) {
	var params []Param
	for _, segment := range strings.Split(entry, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		key, value, ok := strings.Cut(segment, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("parameters should be key=value, got %q", segment)
		}
		params = append(params, Param{Key: key, Value: strings.TrimSpace(value)})
	}
	return params, nil
}

// Lookup returns the value of key in params.
func Lookup(params []Param, key string) (string, bool) {
	for _, p := range params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// SetDefault appends key=value when key is absent and value is non-empty.
// The input slice is not modified.
func SetDefault(params []Param, key, value string) []Param {
	if value == "" {
		return params
	}
	if _, ok := Lookup(params, key); ok {
		return params
	}
	out := make([]Param, len(params), len(params)+1)
	copy(out, params)
	return append(out, Param{Key: key, Value: value})
}
