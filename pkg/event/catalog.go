// Package event loads the table of named events shared with the code
// generator: each event has a criticality flag and a typed field schema.
// Instrumented code uses the catalog to pick the persistence path of a span
// and to type-check the breadcrumbs it records.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrUnknownField = errors.New("unknown field")
	ErrFieldType    = errors.New("field type mismatch")
)

type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeJSON   FieldType = "json"
)

func (t FieldType) valid() bool {
	switch t {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeJSON:
		return true
	}
	return false
}

type Event struct {
	Critical bool                 `json:"critical" yaml:"critical"`
	Fields   map[string]FieldType `json:"fields" yaml:"fields"`
}

type Catalog struct {
	events map[string]Event
}

func New(events map[string]Event) (*Catalog, error) {
	c := &Catalog{events: make(map[string]Event, len(events))}
	for name, ev := range events {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("event with empty name")
		}
		for field, typ := range ev.Fields {
			if !typ.valid() {
				return nil, fmt.Errorf("event %q field %q: unsupported type %q", name, field, typ)
			}
		}
		c.events[name] = ev
	}
	return c, nil
}

// Load reads a catalog file. Files ending in .yaml or .yml are parsed as
// YAML, anything else as JSON.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event catalog: %w", err)
	}

	var events map[string]Event
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &events)
	default:
		err = json.Unmarshal(data, &events)
	}
	if err != nil {
		return nil, fmt.Errorf("parse event catalog %s: %w", path, err)
	}
	return New(events)
}

func (c *Catalog) Lookup(name string) (Event, bool) {
	ev, ok := c.events[name]
	return ev, ok
}

// IsCritical reports whether spans of the named event go to the durable
// queue. Unknown events are not critical.
func (c *Catalog) IsCritical(name string) bool {
	if c == nil {
		return false
	}
	return c.events[name].Critical
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.events))
	for name := range c.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckField verifies that value matches the declared type of field.
func (c *Catalog) CheckField(event, field string, value any) error {
	ev, ok := c.events[event]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
	typ, ok := ev.Fields[field]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, event, field)
	}
	if !matches(typ, value) {
		return fmt.Errorf("%w: %s.%s wants %s, got %T", ErrFieldType, event, field, typ, value)
	}
	return nil
}

func matches(typ FieldType, value any) bool {
	switch typ {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBool:
		_, ok := value.(bool)
		return ok
	case TypeInt:
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
		return false
	case TypeFloat:
		switch value.(type) {
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
		return false
	case TypeJSON:
		_, err := json.Marshal(value)
		return err == nil
	}
	return false
}
