package transform

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseMajorVersion returns the leading dotted segment of version as a
// non-negative integer: "5.2.1" is 5 and "12" is 12.
func ParseMajorVersion(version string) (int, error) {
	major := strings.TrimSpace(version)
	if i := strings.IndexByte(major, '.'); i >= 0 {
		major = major[:i]
	}
	if major == "" {
		return 0, fmt.Errorf("version %q has no major segment", version)
	}
	for _, r := range major {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("version %q has a non-numeric major segment", version)
		}
	}
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0, fmt.Errorf("version %q: %w", version, err)
	}
	return n, nil
}

// NormalizeLocale substitutes def for an absent or null locale.
func NormalizeLocale(locale *string, def string) string {
	if locale == nil {
		return def
	}
	return *locale
}

// payload is a decoded message body. Numbers stay json.Number so that
// identifiers keep their exact text.
type payload map[string]interface{}

func decodePayload(body string) (payload, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var p payload
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("body is not a JSON object")
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON object")
	}
	return p, nil
}

// requiredString returns a non-empty string field. ok is false when the
// field is absent, null or empty.
func (p payload) requiredString(key string) (value string, ok bool, err error) {
	raw, present := p[key]
	if !present || raw == nil {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", false, fmt.Errorf("field %s must be a string, got %T", key, raw)
	}
	if s == "" {
		return "", false, nil
	}
	return s, true, nil
}

// scalarString accepts a string or a number. Absent or null yields "".
func (p payload) scalarString(key string) (string, error) {
	switch v := p[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("field %s must be a string or number, got %T", key, v)
	}
}

func (p payload) optionalString(key string) (*string, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	default:
		return nil, fmt.Errorf("field %s must be a string, got %T", key, v)
	}
}

func (p payload) version(key string) (int, error) {
	switch v := p[key].(type) {
	case nil:
		return 0, fmt.Errorf("field %s is missing", key)
	case string:
		return ParseMajorVersion(v)
	case json.Number:
		return ParseMajorVersion(v.String())
	default:
		return 0, fmt.Errorf("field %s must be a string or number, got %T", key, v)
	}
}
