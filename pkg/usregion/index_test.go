package usregion

import (
	"reflect"
	"strings"
	"testing"
)

func TestVariants(t *testing.T) {
	r := Record{Code: "NY", Name: "New York", AP: "N.Y.", Other: []string{"N. York", "NYork", "", "..."}, Class: State}
	if v, exp := Variants(r).Sorted(), []string{"NEWYORK", "NY", "NYORK"}; !reflect.DeepEqual(v, exp) {
		t.Errorf("expected %q, got %q", exp, v)
	}

	// order of aliases must not matter
	r2 := r
	r2.Other = []string{"...", "", "NYork", "N. York"}
	if !reflect.DeepEqual(Variants(r), Variants(r2)) {
		t.Errorf("variant set depends on alias order")
	}

	if Variants(r).Contains("") {
		t.Errorf("empty string must never match")
	}
	if !Variants(r).Contains("NYORK") {
		t.Errorf("expected variant to be found")
	}
}

func TestBuildIndex(t *testing.T) {
	x := BuildIndex(Builtin())
	for c, exp := range map[Class]string{
		State:      strings.Join(testCodes[:51], ","),
		Territory:  strings.Join(testCodes[51:56], ","),
		Associated: strings.Join(testCodes[56:], ","),
	} {
		var codes []string
		for _, p := range x.Patterns(c) {
			codes = append(codes, p.Code)
			if len(p.Variants) == 0 {
				t.Errorf("%s: no variants", p.Code)
			}
			if p.Variants.Contains("") {
				t.Errorf("%s: contains empty variant", p.Code)
			}
		}
		if act := strings.Join(codes, ","); act != exp {
			t.Errorf("%s: expected patterns for %s, got %s", c, exp, act)
		}
	}
	if ps := x.Patterns(All); len(ps) != 0 {
		t.Errorf("all is not a storage class, but got %d patterns", len(ps))
	}
}

func TestIndexMerge(t *testing.T) {
	x := &Index{class: map[Class][]Pattern{
		State:     {{Code: "A", Variants: VariantSet{"X": {}}}, {Code: "B"}},
		Territory: {{Code: "C"}, {Code: "A", Variants: VariantSet{"Y": {}}}},
	}}
	ps := x.merge([]Class{State, Territory})

	var codes []string
	for _, p := range ps {
		codes = append(codes, p.Code)
	}
	if act := strings.Join(codes, ","); act != "A,B,C" {
		t.Errorf("expected merged order A,B,C, got %s", act)
	}
	if !ps[0].Variants.Contains("Y") || ps[0].Variants.Contains("X") {
		t.Errorf("later class should take precedence")
	}
}

func TestExpandClasses(t *testing.T) {
	for _, c := range []struct {
		In  []Class
		Out []Class
	}{
		{nil, []Class{State}},
		{[]Class{}, []Class{State}},
		{[]Class{All}, []Class{State, Territory, Associated}},
		{[]Class{Associated, All}, []Class{Associated, State, Territory}},
		{[]Class{Territory, Territory}, []Class{Territory}},
		{[]Class{"nope"}, []Class{}},
	} {
		if act := expandClasses(c.In); !reflect.DeepEqual(act, c.Out) {
			t.Errorf("expand %v: expected %v, got %v", c.In, c.Out, act)
		}
	}
}
