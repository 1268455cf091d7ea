package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is the slug of one of the six fixed inventory domains.
type Category string

const (
	CategoryPrivateJets    Category = "private-jets"
	CategoryHelicopters    Category = "helicopters"
	CategoryYachts         Category = "yachts"
	CategoryLuxuryCars     Category = "luxury-cars"
	CategorySuperCars      Category = "super-cars"
	CategoryCharterFlights Category = "charter-flights"
)

// FieldKind is the storage type of a schema field.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindInt
	KindBool
	KindStringList
)

// Field is one allow-listed attribute of a category schema.
type Field struct {
	Name       string
	Kind       FieldKind
	Required   bool
	Default    any
	Searchable bool
}

// CategoryDescriptor binds a category to its collection, id scheme and
// field schema.
type CategoryDescriptor struct {
	Category   Category
	Collection string
	Prefix     string
	Fields     []Field
}

// Envelope field names shared by every category.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldAvailable   = "available"
	FieldTags        = "tags"
	FieldImages      = "images"
)

var envelopeFields = []Field{
	{Name: FieldName, Kind: KindString, Required: true, Searchable: true},
	{Name: FieldDescription, Kind: KindString, Required: true, Searchable: true},
	{Name: FieldAvailable, Kind: KindBool, Default: true},
	{Name: FieldTags, Kind: KindStringList, Default: []string{}, Searchable: true},
	{Name: FieldImages, Kind: KindStringList, Default: []string{}},
}

func withEnvelope(fields ...Field) []Field {
	out := make([]Field, 0, len(envelopeFields)+len(fields))
	out = append(out, envelopeFields...)
	return append(out, fields...)
}

var categories = []CategoryDescriptor{
	{
		Category:   CategoryPrivateJets,
		Collection: "private_jets",
		Prefix:     "PJ",
		Fields: withEnvelope(
			Field{Name: "model", Kind: KindString, Searchable: true},
			Field{Name: "manufacturer", Kind: KindString, Searchable: true},
			Field{Name: "seats", Kind: KindInt},
			Field{Name: "rangeKm", Kind: KindNumber},
			Field{Name: "cruiseSpeedKmh", Kind: KindNumber},
			Field{Name: "baseAirport", Kind: KindString, Searchable: true},
			Field{Name: "hourlyRate", Kind: KindNumber},
			Field{Name: "yearOfManufacture", Kind: KindInt},
			Field{Name: "features", Kind: KindStringList, Default: []string{}, Searchable: true},
		),
	},
	{
		Category:   CategoryHelicopters,
		Collection: "helicopters",
		Prefix:     "HC",
		Fields: withEnvelope(
			Field{Name: "model", Kind: KindString, Searchable: true},
			Field{Name: "manufacturer", Kind: KindString, Searchable: true},
			Field{Name: "seats", Kind: KindInt},
			Field{Name: "rangeKm", Kind: KindNumber},
			Field{Name: "baseHeliport", Kind: KindString, Searchable: true},
			Field{Name: "hourlyRate", Kind: KindNumber},
			Field{Name: "features", Kind: KindStringList, Default: []string{}, Searchable: true},
		),
	},
	{
		Category:   CategoryYachts,
		Collection: "yachts",
		Prefix:     "YT",
		Fields: withEnvelope(
			Field{Name: "model", Kind: KindString, Searchable: true},
			Field{Name: "builder", Kind: KindString, Searchable: true},
			Field{Name: "lengthM", Kind: KindNumber},
			Field{Name: "cabins", Kind: KindInt},
			Field{Name: "guests", Kind: KindInt},
			Field{Name: "crew", Kind: KindInt},
			Field{Name: "baseMarina", Kind: KindString, Searchable: true},
			Field{Name: "dailyRate", Kind: KindNumber},
			Field{Name: "features", Kind: KindStringList, Default: []string{}, Searchable: true},
		),
	},
	{
		Category:   CategoryLuxuryCars,
		Collection: "luxury_cars",
		Prefix:     "LC",
		Fields: withEnvelope(
			Field{Name: "make", Kind: KindString, Searchable: true},
			Field{Name: "model", Kind: KindString, Searchable: true},
			Field{Name: "year", Kind: KindInt},
			Field{Name: "seats", Kind: KindInt},
			Field{Name: "transmission", Kind: KindString},
			Field{Name: "location", Kind: KindString, Searchable: true},
			Field{Name: "dailyRate", Kind: KindNumber},
			Field{Name: "features", Kind: KindStringList, Default: []string{}, Searchable: true},
		),
	},
	{
		Category:   CategorySuperCars,
		Collection: "super_cars",
		Prefix:     "SC",
		Fields: withEnvelope(
			Field{Name: "make", Kind: KindString, Searchable: true},
			Field{Name: "model", Kind: KindString, Searchable: true},
			Field{Name: "year", Kind: KindInt},
			Field{Name: "horsepower", Kind: KindInt},
			Field{Name: "topSpeedKmh", Kind: KindNumber},
			Field{Name: "location", Kind: KindString, Searchable: true},
			Field{Name: "dailyRate", Kind: KindNumber},
			Field{Name: "features", Kind: KindStringList, Default: []string{}, Searchable: true},
		),
	},
	{
		Category:   CategoryCharterFlights,
		Collection: "charter_flights",
		Prefix:     "CF",
		Fields: withEnvelope(
			Field{Name: "aircraftModel", Kind: KindString, Searchable: true},
			Field{Name: "operator", Kind: KindString, Searchable: true},
			Field{Name: "origin", Kind: KindString, Searchable: true},
			Field{Name: "destination", Kind: KindString, Searchable: true},
			Field{Name: "departureAt", Kind: KindString},
			Field{Name: "seats", Kind: KindInt},
			Field{Name: "pricePerSeat", Kind: KindNumber},
		),
	},
}

// Categories returns all category descriptors in a stable order.
func Categories() []CategoryDescriptor {
	return append([]CategoryDescriptor(nil), categories...)
}

// ResolveCategory maps a category name to its descriptor. Slugs and
// snake_case aliases are accepted, case-insensitively.
func ResolveCategory(name string) (CategoryDescriptor, error) {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, d := range categories {
		if string(d.Category) == slug {
			return d, nil
		}
	}
	return CategoryDescriptor{}, fmt.Errorf("%w: %q", ErrInvalidCategory, name)
}

// CategoryForID returns the category whose prefix scheme matches a
// human-readable id such as HC003.
func CategoryForID(id string) (CategoryDescriptor, bool) {
	for _, d := range categories {
		if _, ok := d.ParseSequence(id); ok {
			return d, true
		}
	}
	return CategoryDescriptor{}, false
}

// SequentialID formats n under the descriptor's prefix scheme.
func (d CategoryDescriptor) SequentialID(n int64) string {
	return fmt.Sprintf("%s%03d", d.Prefix, n)
}

// ParseSequence extracts the sequence number from a prefixed id. Only the
// stored form is accepted: the upper-case prefix followed by digits.
func (d CategoryDescriptor) ParseSequence(id string) (int64, bool) {
	digits, ok := strings.CutPrefix(id, d.Prefix)
	if !ok || digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Field looks up an allow-listed field by name.
func (d CategoryDescriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// SearchFields lists the fields matched by free-text search.
func (d CategoryDescriptor) SearchFields() []string {
	var out []string
	for _, f := range d.Fields {
		if f.Searchable {
			out = append(out, f.Name)
		}
	}
	return out
}

// IsObjectIDHex reports whether id has the generated 24-hex form.
func IsObjectIDHex(id string) bool {
	if len(id) != 24 {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
