package mcp

import (
	"fmt"
	"time"
)

// FieldType enumerates the argument types a tool's input schema may
// declare.
type FieldType string

const (
	// TypeString is a free-form string.
	TypeString FieldType = "string"
	// TypeDate is a string formatted as YYYY-MM-DD.
	TypeDate FieldType = "string-date"
	// TypeInteger is a whole number, optionally bounded by Min/Max.
	TypeInteger FieldType = "integer"
	// TypeEnum is a string restricted to the Enum values.
	TypeEnum FieldType = "enum"
)

// Field describes one argument of a tool's input schema.
type Field struct {
	Type        FieldType
	Required    bool
	Description string

	// Enum lists the allowed values when Type == TypeEnum.
	Enum []string

	// Min and Max bound an integer field. Nil means unbounded on that side.
	Min *int
	Max *int
}

// Schema is a tool's declarative input schema: argument name to Field.
type Schema map[string]Field

// IntBounds is a convenience constructor for a bounded integer Field.
func IntBounds(min, max int) (*int, *int) {
	lo, hi := min, max
	return &lo, &hi
}

// JSONSchema renders s into the map[string]any shape the wire layer embeds
// as a tool's inputSchema (JSON Schema draft-7-ish object schema).
func (s Schema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s))
	required := make([]string, 0, len(s))

	for name, field := range s {
		prop := map[string]any{}
		switch field.Type {
		case TypeString:
			prop["type"] = "string"
		case TypeDate:
			prop["type"] = "string"
			prop["format"] = "date"
		case TypeInteger:
			prop["type"] = "integer"
			if field.Min != nil {
				prop["minimum"] = *field.Min
			}
			if field.Max != nil {
				prop["maximum"] = *field.Max
			}
		case TypeEnum:
			prop["type"] = "string"
			prop["enum"] = field.Enum
		}
		if field.Description != "" {
			prop["description"] = field.Description
		}
		properties[name] = prop
		if field.Required {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Validate checks args against s: required fields present, types matching,
// enum membership, integer bounds, and date format. It reports the first
// violation found.
func (s Schema) Validate(args map[string]any) error {
	for name, field := range s {
		value, present := args[name]
		if !present {
			if field.Required {
				return fmt.Errorf("missing required argument %q", name)
			}
			continue
		}
		if err := validateField(name, field, value); err != nil {
			return err
		}
	}
	return nil
}

func validateField(name string, field Field, value any) error {
	switch field.Type {
	case TypeString, TypeDate:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("argument %q must be a string", name)
		}
		if field.Type == TypeDate {
			if _, err := time.Parse("2006-01-02", str); err != nil {
				return fmt.Errorf("argument %q must be a date formatted YYYY-MM-DD: %w", name, err)
			}
		}
	case TypeEnum:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("argument %q must be a string", name)
		}
		for _, allowed := range field.Enum {
			if str == allowed {
				return nil
			}
		}
		return fmt.Errorf("argument %q must be one of %v, got %q", name, field.Enum, str)
	case TypeInteger:
		n, ok := asInt(value)
		if !ok {
			return fmt.Errorf("argument %q must be an integer", name)
		}
		if field.Min != nil && n < *field.Min {
			return fmt.Errorf("argument %q must be >= %d", name, *field.Min)
		}
		if field.Max != nil && n > *field.Max {
			return fmt.Errorf("argument %q must be <= %d", name, *field.Max)
		}
	}
	return nil
}

// asInt accepts the numeric shapes encoding/json produces for an
// interface{} target (always float64) as well as a plain int, since
// handlers built in Go code may construct args directly.
func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
