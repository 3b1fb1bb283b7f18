// Package projection implements the flat key-value serialization contract.
// Every entity projects to a map of field name → primitive value: enums as
// their string tag, timestamps as RFC3339Nano strings, absent optionals
// omitted. The projection is the sole wire format the core defines; it is
// suitable for any tabular or document store.
package projection

import (
	"fmt"
	"time"
)

// Flat is a single record's flat projection.
type Flat = map[string]any

// SetString stores v under key. Empty strings are stored; use SetOptString
// for optional fields.
func SetString(m Flat, key, v string) { m[key] = v }

// SetOptString stores v only when non-nil.
func SetOptString(m Flat, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

// SetInt stores v under key.
func SetInt(m Flat, key string, v int64) { m[key] = v }

// SetOptInt stores v only when non-nil.
func SetOptInt(m Flat, key string, v *int64) {
	if v != nil {
		m[key] = *v
	}
}

// SetFloat stores v under key.
func SetFloat(m Flat, key string, v float64) { m[key] = v }

// SetOptFloat stores v only when non-nil.
func SetOptFloat(m Flat, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

// SetBool stores v under key.
func SetBool(m Flat, key string, v bool) { m[key] = v }

// SetTime stores t as an RFC3339Nano string.
func SetTime(m Flat, key string, t time.Time) {
	m[key] = t.UTC().Format(time.RFC3339Nano)
}

// SetOptTime stores t only when non-nil.
func SetOptTime(m Flat, key string, t *time.Time) {
	if t != nil {
		SetTime(m, key, *t)
	}
}

// String reads a required string field.
func String(m Flat, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("projection missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("projection field %q: expected string, got %T", key, v)
	}
	return s, nil
}

// OptString reads an optional string field; absent yields nil.
func OptString(m Flat, key string) (*string, error) {
	if _, ok := m[key]; !ok {
		return nil, nil
	}
	s, err := String(m, key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Int reads a required integer field. JSON round-trips may deliver float64.
func Int(m Flat, key string) (int64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("projection missing field %q", key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	}
	return 0, fmt.Errorf("projection field %q: expected integer, got %T", key, m[key])
}

// OptInt reads an optional integer field; absent yields nil.
func OptInt(m Flat, key string) (*int64, error) {
	if _, ok := m[key]; !ok {
		return nil, nil
	}
	n, err := Int(m, key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Float reads a required float field.
func Float(m Flat, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("projection missing field %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	}
	return 0, fmt.Errorf("projection field %q: expected float, got %T", key, m[key])
}

// OptFloat reads an optional float field; absent yields nil.
func OptFloat(m Flat, key string) (*float64, error) {
	if _, ok := m[key]; !ok {
		return nil, nil
	}
	f, err := Float(m, key)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Bool reads a required boolean field.
func Bool(m Flat, key string) (bool, error) {
	v, ok := m[key]
	if !ok {
		return false, fmt.Errorf("projection missing field %q", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("projection field %q: expected bool, got %T", key, v)
	}
	return b, nil
}

// OptBool reads an optional boolean field; absent yields nil.
func OptBool(m Flat, key string) (*bool, error) {
	if _, ok := m[key]; !ok {
		return nil, nil
	}
	b, err := Bool(m, key)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Time reads a required RFC3339Nano timestamp field.
func Time(m Flat, key string) (time.Time, error) {
	s, err := String(m, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("projection field %q: %w", key, err)
	}
	return t, nil
}

// OptTime reads an optional timestamp field; absent yields nil.
func OptTime(m Flat, key string) (*time.Time, error) {
	if _, ok := m[key]; !ok {
		return nil, nil
	}
	t, err := Time(m, key)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
