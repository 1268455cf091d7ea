package domain

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Item is an inventory record. Envelope fields are typed; the category's
// remaining allow-listed fields live in Attributes.
type Item struct {
	ID          string
	Category    Category
	Name        string
	Description string
	Available   bool
	Tags        []string
	Images      []string
	VendorID    string
	Attributes  map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MarshalJSON renders the item as a single flat object, the shape the
// dashboard consumes.
func (it Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Attributes)+10)
	for k, v := range it.Attributes {
		out[k] = v
	}
	out["id"] = it.ID
	out["category"] = it.Category
	out[FieldName] = it.Name
	out[FieldDescription] = it.Description
	out[FieldAvailable] = it.Available
	out[FieldTags] = nonNil(it.Tags)
	out[FieldImages] = nonNil(it.Images)
	if it.VendorID != "" {
		out["vendorId"] = it.VendorID
	}
	out["createdAt"] = it.CreatedAt
	out["updatedAt"] = it.UpdatedAt
	return json.Marshal(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Fields returns every allow-listed field of the item, envelope included.
func (it *Item) Fields() map[string]any {
	out := make(map[string]any, len(it.Attributes)+5)
	for k, v := range it.Attributes {
		out[k] = v
	}
	out[FieldName] = it.Name
	out[FieldDescription] = it.Description
	out[FieldAvailable] = it.Available
	out[FieldTags] = nonNil(it.Tags)
	out[FieldImages] = nonNil(it.Images)
	return out
}

// NewItem splits sanitized fields into envelope and attributes.
func (d CategoryDescriptor) NewItem(fields map[string]any) *Item {
	it := &Item{Category: d.Category, Attributes: make(map[string]any)}
	for k, v := range fields {
		switch k {
		case FieldName:
			it.Name, _ = v.(string)
		case FieldDescription:
			it.Description, _ = v.(string)
		case FieldAvailable:
			it.Available, _ = v.(bool)
		case FieldTags:
			it.Tags, _ = v.([]string)
		case FieldImages:
			it.Images, _ = v.([]string)
		default:
			it.Attributes[k] = v
		}
	}
	return it
}

// Sanitize applies the allow-list and strict type coercion to client input.
// Unknown fields are dropped silently. When applyDefaults is set, omitted
// fields that declare a default receive it.
func (d CategoryDescriptor) Sanitize(input map[string]any, applyDefaults bool) (map[string]any, error) {
	out := make(map[string]any, len(input))
	for _, f := range d.Fields {
		raw, present := input[f.Name]
		if !present {
			if applyDefaults && f.Default != nil {
				out[f.Name] = cloneDefault(f.Default)
			}
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

// Normalize coerces stored values back into canonical Go types. Values that
// no longer fit the schema are dropped rather than failing the read.
func (d CategoryDescriptor) Normalize(stored map[string]any) map[string]any {
	out := make(map[string]any, len(stored))
	for _, f := range d.Fields {
		raw, ok := stored[f.Name]
		if !ok {
			continue
		}
		if v, err := coerce(f, raw); err == nil {
			out[f.Name] = v
		}
	}
	return out
}

// RequireDisplayFields rejects a field set lacking name or description.
func RequireDisplayFields(fields map[string]any) error {
	for _, name := range []string{FieldName, FieldDescription} {
		s, _ := fields[name].(string)
		if strings.TrimSpace(s) == "" {
			return Invalid(name, "is required")
		}
	}
	return nil
}

// Diff returns the subset of update whose values differ from current.
func Diff(current, update map[string]any) map[string]any {
	changed := make(map[string]any)
	for k, v := range update {
		if !reflect.DeepEqual(current[k], v) {
			changed[k] = v
		}
	}
	return changed
}

func cloneDefault(v any) any {
	if s, ok := v.([]string); ok {
		return append([]string{}, s...)
	}
	return v
}

func coerce(f Field, raw any) (any, error) {
	switch f.Kind {
	case KindString:
		return coerceString(f.Name, raw)
	case KindNumber:
		return coerceNumber(f.Name, raw)
	case KindInt:
		n, err := coerceNumber(f.Name, raw)
		if err != nil {
			return nil, err
		}
		if n != math.Trunc(n) {
			return nil, Invalid(f.Name, "must be a whole number")
		}
		return int64(n), nil
	case KindBool:
		return coerceBool(f.Name, raw)
	case KindStringList:
		return coerceStringList(f.Name, raw)
	}
	return nil, Invalid(f.Name, "has an unsupported type")
}

func coerceString(name string, raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	}
	return "", Invalid(name, "must be a string")
}

func coerceNumber(name string, raw any) (float64, error) {
	var n float64
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, Invalid(name, "must be a number")
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, Invalid(name, "must be a number")
		}
		n = f
	default:
		return 0, Invalid(name, "must be a number")
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, Invalid(name, "must be a finite number")
	}
	return n, nil
}

func coerceBool(name string, raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return b, nil
		}
	}
	return false, Invalid(name, "must be a boolean")
}

func coerceStringList(name string, raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return cleanList(v), nil
	case string:
		return cleanList(strings.Split(v, ",")), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, Invalid(name, "must be a list of strings")
			}
			out = append(out, s)
		}
		return cleanList(out), nil
	}
	return nil, Invalid(name, "must be a list of strings")
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
