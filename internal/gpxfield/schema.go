package gpxfield

import (
	"fmt"
	"slices"
	"sort"
)

// Schema holds an entity's field tables for GPX 1.0 and 1.1
type Schema[T any] struct {
	entity string
	attrs  []string
	newFn  func() *T
	tables map[string][]Field[T]
	index  map[string]map[string]Field[T]
}

// NewSchema declares an entity type with the complete set of attribute
// names its field tables must cover
func NewSchema[T any](entity string, newFn func() *T, attrs ...string) *Schema[T] {
	return &Schema[T]{
		entity: entity,
		attrs:  attrs,
		newFn:  newFn,
		tables: make(map[string][]Field[T]),
		index:  make(map[string]map[string]Field[T]),
	}
}

// Define sets the field table for one version
func (s *Schema[T]) Define(version string, fields ...Field[T]) *Schema[T] {
	s.tables[version] = fields
	byName := make(map[string]Field[T], len(fields))
	for _, f := range fields {
		if name := f.desc().name; name != "" {
			byName[name] = f
		}
	}
	s.index[version] = byName
	return s
}

// Entity returns the entity name used in errors
func (s *Schema[T]) Entity() string {
	return s.entity
}

// Fields returns the table for version. Anything other than "1.1" reads as 1.0.
func (s *Schema[T]) Fields(version string) []Field[T] {
	return s.tables[tableVersion(version)]
}

// New returns an entity with every field at its default
func (s *Schema[T]) New() *T {
	return s.newFn()
}

func tableVersion(version string) string {
	if version == "1.1" {
		return "1.1"
	}
	return "1.0"
}

// dependentsSet decides whether a group is written
func (s *Schema[T]) dependentsSet(e *T, version string, d *descriptor) bool {
	byName := s.index[tableVersion(version)]
	deps := d.required
	if len(deps) == 0 {
		deps = d.optional
	}
	for _, dep := range deps {
		if f, ok := byName[dep]; ok && f.hasValue(e) {
			return true
		}
	}
	return false
}

// Check verifies the tables against the declared attribute set and the
// defaults of a freshly constructed entity
func (s *Schema[T]) Check() error {
	var problems []string

	declared := make(map[string]bool, len(s.attrs))
	for _, a := range s.attrs {
		declared[a] = true
	}

	covered := make(map[string]bool)
	fresh := s.New()
	for _, version := range []string{"1.0", "1.1"} {
		fields, ok := s.tables[version]
		if !ok {
			problems = append(problems, fmt.Sprintf("no field table for %s", version))
			continue
		}

		var open []string
		for i, f := range fields {
			d := f.desc()
			switch d.kind {
			case kindGroupStart:
				open = append(open, d.tag)
				for _, dep := range slices.Concat(d.required, d.optional) {
					if _, ok := s.index[version][dep]; !ok {
						problems = append(problems, fmt.Sprintf("%s: group %s depends on unknown field %s", version, d.tag, dep))
					}
				}
				continue
			case kindGroupEnd:
				if len(open) == 0 || open[len(open)-1] != d.tag {
					problems = append(problems, fmt.Sprintf("%s: group end %s does not match an open group", version, d.tag))
				} else {
					open = open[:len(open)-1]
				}
				continue
			}

			if d.name == "" {
				problems = append(problems, fmt.Sprintf("%s: field %d has no name", version, i))
				continue
			}
			covered[d.name] = true
			if !declared[d.name] {
				problems = append(problems, fmt.Sprintf("%s: field %s is not declared", version, d.name))
			}
			if !f.isDefault(fresh) {
				problems = append(problems, fmt.Sprintf("%s: field %s does not default to unset", version, d.name))
			}
		}
		for _, tag := range open {
			problems = append(problems, fmt.Sprintf("%s: group %s is never closed", version, tag))
		}
	}

	var missing []string
	for a := range declared {
		if !covered[a] {
			missing = append(missing, a)
		}
	}
	sort.Strings(missing)
	for _, a := range missing {
		problems = append(problems, fmt.Sprintf("attribute %s has no field", a))
	}

	if len(problems) > 0 {
		return &SchemaError{Entity: s.entity, Problems: problems}
	}
	return nil
}
