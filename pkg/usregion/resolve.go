package usregion

import (
	"strings"
	"sync"
)

// Field is a record field which can be returned from a query.
type Field string

const (
	FieldCode Field = "code" // Record.Code
	FieldName Field = "name" // Record.Name
	FieldAP   Field = "ap"   // Record.AP
)

// Projection derives output values from the full code to name mapping of a
// table. The map passed to it is a copy and may be modified and returned.
type Projection func(names map[string]string) map[string]string

type outputKind uint8

const (
	outputField outputKind = iota
	outputCustom
)

// Output selects the value returned for a matched region. The zero value
// returns the code.
type Output struct {
	kind    outputKind
	field   Field
	project Projection
}

// FieldOutput returns a field of the matched record.
func FieldOutput(f Field) Output {
	return Output{kind: outputField, field: f}
}

// CustomOutput returns the value fn derives for the matched code.
func CustomOutput(fn Projection) Output {
	return Output{kind: outputCustom, project: fn}
}

// IsCustom returns true if o was created by CustomOutput.
func (o Output) IsCustom() bool {
	return o.kind == outputCustom
}

// Field returns the selected field, or an empty string for a custom output.
func (o Output) Field() Field {
	switch o.kind {
	case outputCustom:
		return ""
	case outputField:
		if o.field == "" {
			return FieldCode
		}
		return o.field
	default:
		panic("unhandled output kind")
	}
}

// Options configures a query. The zero value matches states only and returns
// the code.
type Options struct {
	// Classes to match against. If empty, only states are matched. All expands
	// to every class. Classes are scanned in the order provided, and unknown
	// ones are ignored.
	Classes []Class

	// Output selects the returned value.
	Output Output

	// Omit excludes codes from matching. Codes are trimmed and upper-cased.
	Omit []string
}

// Resolver resolves queries against a table. It is safe for concurrent use.
type Resolver struct {
	table *Table
	index *Index
}

// NewResolver builds the index for t and returns a Resolver for it.
func NewResolver(t *Table) *Resolver {
	return &Resolver{
		table: t,
		index: BuildIndex(t),
	}
}

// Table returns the table r resolves against.
func (r *Resolver) Table() *Table {
	return r.table
}

// Index returns the index r resolves with.
func (r *Resolver) Index() *Index {
	return r.index
}

// Match returns the code of the first region in the requested classes whose
// variants contain the sanitized input.
func (r *Resolver) Match(input string, o Options) (string, bool) {
	q := Sanitize(input)
	if q == "" {
		return "", false
	}

	var omit map[string]struct{}
	for _, c := range o.Omit {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			if omit == nil {
				omit = map[string]struct{}{}
			}
			omit[c] = struct{}{}
		}
	}

	for _, p := range r.index.merge(expandClasses(o.Classes)) {
		if _, skip := omit[p.Code]; skip {
			continue
		}
		if p.Variants.Contains(q) {
			return p.Code, true
		}
	}
	return "", false
}

// Normalize resolves input and projects the matched code according to
// o.Output. If nothing matches, or the projected value is missing or empty,
// ok is false.
func (r *Resolver) Normalize(input string, o Options) (string, bool) {
	code, ok := r.Match(input, o)
	if !ok {
		return "", false
	}
	return r.project(code, o.Output)
}

func (r *Resolver) project(code string, o Output) (string, bool) {
	switch o.kind {
	case outputCustom:
		if o.project == nil {
			return "", false
		}
		v := o.project(r.table.Names())[code]
		return v, v != ""

	case outputField:
		rec, ok := r.table.Lookup(code)
		if !ok {
			return "", false
		}
		var v string
		switch o.Field() {
		case FieldCode:
			v = rec.Code
		case FieldName:
			v = rec.Name
		case FieldAP:
			v = rec.AP
		}
		return v, v != ""

	default:
		panic("unhandled output kind")
	}
}

// expandClasses returns the classes to scan, in order, with All expanded,
// duplicates and unknown classes removed, and the default applied if empty.
func expandClasses(cs []Class) []Class {
	if len(cs) == 0 {
		return []Class{State}
	}
	r := make([]Class, 0, len(Classes()))
	seen := map[Class]bool{}
	for _, c := range cs {
		var x []Class
		if c == All {
			x = Classes()
		} else if c.Known() {
			x = []Class{c}
		}
		for _, c := range x {
			if !seen[c] {
				seen[c] = true
				r = append(r, c)
			}
		}
	}
	return r
}

var defaultResolver = sync.OnceValue(func() *Resolver {
	return NewResolver(Builtin())
})

// Default returns a Resolver for the builtin table, building it on first use.
func Default() *Resolver {
	return defaultResolver()
}

// Normalize calls Normalize on the default resolver.
func Normalize(input string, o Options) (string, bool) {
	return Default().Normalize(input, o)
}
