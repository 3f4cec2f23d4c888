package usregion

import "sort"

// VariantSet is a set of sanitized textual forms of a region.
type VariantSet map[string]struct{}

// Variants builds the variant set for r from its code, name, AP abbreviation,
// and other aliases. Empty variants are never included.
func Variants(r Record) VariantSet {
	vs := make(VariantSet, 3+len(r.Other))
	vs.add(r.Code)
	vs.add(r.Name)
	vs.add(r.AP)
	for _, a := range r.Other {
		vs.add(a)
	}
	return vs
}

func (vs VariantSet) add(s string) {
	if v := Sanitize(s); v != "" {
		vs[v] = struct{}{}
	}
}

// Contains checks whether the already-sanitized string v is in the set. It is
// always false for an empty string.
func (vs VariantSet) Contains(v string) bool {
	if v == "" {
		return false
	}
	_, ok := vs[v]
	return ok
}

// Sorted returns the variants in lexical order.
func (vs VariantSet) Sorted() []string {
	r := make([]string, 0, len(vs))
	for v := range vs {
		r = append(r, v)
	}
	sort.Strings(r)
	return r
}

// Pattern is the variant set for a single code.
type Pattern struct {
	Code     string
	Variants VariantSet
}

// Index contains the patterns for each class of a [Table], in table order. It
// must not be modified after it is built, and is safe for concurrent use.
type Index struct {
	class map[Class][]Pattern
}

// BuildIndex builds an Index for t.
func BuildIndex(t *Table) *Index {
	x := &Index{
		class: make(map[Class][]Pattern, len(Classes())),
	}
	for _, r := range t.records {
		x.class[r.Class] = append(x.class[r.Class], Pattern{
			Code:     r.Code,
			Variants: Variants(r),
		})
	}
	return x
}

// Patterns gets the patterns for c. The returned slice must not be modified.
func (x *Index) Patterns(c Class) []Pattern {
	return x.class[c]
}

// merge combines the patterns for the provided (already expanded) classes. If
// a code is in more than one class, the pattern from the later class replaces
// the earlier one, but keeps its position.
func (x *Index) merge(classes []Class) []Pattern {
	if len(classes) == 1 {
		return x.class[classes[0]]
	}
	var n int
	for _, c := range classes {
		n += len(x.class[c])
	}
	ps := make([]Pattern, 0, n)
	pos := make(map[string]int, n)
	for _, c := range classes {
		for _, p := range x.class[c] {
			if i, ok := pos[p.Code]; ok {
				ps[i] = p
				continue
			}
			pos[p.Code] = len(ps)
			ps = append(ps, p)
		}
	}
	return ps
}
