// Package usregion resolves free-form references to U.S. states, territories,
// and freely-associated states into their USPS codes, names, or AP-style
// abbreviations.
//
// Every record in a [Table] is expanded into a set of sanitized variants (the
// code, the name, the AP abbreviation, and any other known aliases). A query is
// sanitized the same way and matches the region whose variant set contains it.
// Sanitization keeps only ASCII letters and upper-cases them, so "n. dak.",
// "N.Dak" and "NDAK" are all the same query.
//
// Resolution never fails loudly. Anything which can't be resolved (empty input,
// no matching region, an omitted region, a missing output field) simply yields
// no result.
package usregion

import (
	"fmt"
	"slices"
)

// Class is a partition of the regions in a [Table].
type Class string

const (
	State      Class = "state"      // the 50 states and DC
	Territory  Class = "territory"  // inhabited territories
	Associated Class = "associated" // freely-associated states

	// All is shorthand for State, Territory, and Associated, in that order. It
	// is only valid in queries, never on a Record.
	All Class = "all"
)

// Classes gets all storage classes in scan order.
func Classes() []Class {
	return []Class{State, Territory, Associated}
}

// Known returns true if c is a storage class.
func (c Class) Known() bool {
	switch c {
	case State, Territory, Associated:
		return true
	}
	return false
}

// String returns the class name.
func (c Class) String() string {
	return string(c)
}

// GoString returns the Go representation of c.
func (c Class) GoString() string {
	return fmt.Sprintf("Class(%q)", string(c))
}

// Record describes a single region.
type Record struct {
	Code  string   // USPS code, unique within a table
	Name  string   // full name
	AP    string   // AP style abbreviation, empty if there isn't one
	Other []string // other aliases, in no particular order
	Class Class
}

// Table is an immutable set of region records. It is safe for concurrent use.
type Table struct {
	records []Record
	code    map[string]int
}

// NewTable creates a table from rs, preserving order. Codes must be unique and
// consist only of upper-case ASCII letters and digits, and every record must
// belong to a storage class.
func NewTable(rs []Record) (*Table, error) {
	t := &Table{
		records: make([]Record, 0, len(rs)),
		code:    make(map[string]int, len(rs)),
	}
	for i, r := range rs {
		if r.Code == "" {
			return nil, fmt.Errorf("record %d: code is required", i)
		}
		if !validCode(r.Code) {
			return nil, fmt.Errorf("record %q: code must only contain A-Z and 0-9", r.Code)
		}
		if !r.Class.Known() {
			return nil, fmt.Errorf("record %q: invalid class %q", r.Code, r.Class)
		}
		if _, dup := t.code[r.Code]; dup {
			return nil, fmt.Errorf("record %q: duplicate code", r.Code)
		}
		r.Other = slices.Clone(r.Other)
		t.code[r.Code] = len(t.records)
		t.records = append(t.records, r)
	}
	return t, nil
}

func validCode(s string) bool {
	for _, c := range []byte(s) {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// Len returns the number of records in t.
func (t *Table) Len() int {
	return len(t.records)
}

// Lookup gets the record for the exact code.
func (t *Table) Lookup(code string) (Record, bool) {
	if i, ok := t.code[code]; ok {
		r := t.records[i]
		r.Other = slices.Clone(r.Other)
		return r, true
	}
	return Record{}, false
}

// Records gets a copy of the records in the provided classes (or all of them if
// none are provided), in table order.
func (t *Table) Records(classes ...Class) []Record {
	var want map[Class]bool
	if len(classes) != 0 {
		want = map[Class]bool{}
		for _, c := range expandClasses(classes) {
			want[c] = true
		}
	}
	rs := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		if want == nil || want[r.Class] {
			r.Other = slices.Clone(r.Other)
			rs = append(rs, r)
		}
	}
	return rs
}

// Names returns a new map of every code in t to its full name.
func (t *Table) Names() map[string]string {
	m := make(map[string]string, len(t.records))
	for _, r := range t.records {
		m[r.Code] = r.Name
	}
	return m
}

// WithAliases returns a copy of t with the provided aliases appended to the
// records for each code. An alias must contain at least one letter, and must
// not already match a different record.
func (t *Table) WithAliases(aliases map[string][]string) (*Table, error) {
	rs := t.Records()

	vs := make([]VariantSet, len(rs))
	for i, r := range rs {
		vs[i] = Variants(r)
	}

	codes := make([]string, 0, len(aliases))
	for code := range aliases {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	for _, code := range codes {
		i, ok := t.code[code]
		if !ok {
			return nil, fmt.Errorf("add aliases: unknown code %q", code)
		}
		for _, a := range aliases[code] {
			v := Sanitize(a)
			if v == "" {
				return nil, fmt.Errorf("add aliases: %s alias %q does not contain any letters", code, a)
			}
			for j := range vs {
				if j != i && vs[j].Contains(v) {
					return nil, fmt.Errorf("add aliases: %s alias %q already matches %s", code, a, rs[j].Code)
				}
			}
			vs[i].add(a)
			rs[i].Other = append(rs[i].Other, a)
		}
	}
	return NewTable(rs)
}
