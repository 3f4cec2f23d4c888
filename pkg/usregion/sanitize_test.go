package usregion

import (
	"reflect"
	"testing"
)

func TestSanitize(t *testing.T) {
	for _, c := range [][2]string{
		{"", ""},
		{"   ", ""},
		{"ca", "CA"},
		{" N. D. ", "ND"},
		{"Ill's", "ILLS"},
		{"R.I. & P.P.", "RIPP"},
		{"New\tYork\n", "NEWYORK"},
		{"Wash-DC 2", "WASHDC"},
		{"Pẽnnsylvania", "PNNSYLVANIA"},
		{"日本", ""},
		{"\x00\xff", ""},
	} {
		if v := Sanitize(c[0]); v != c[1] {
			t.Errorf("sanitize %q: expected %q, got %q", c[0], c[1], v)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	for _, x := range append(append([]string{"", " a.b.c ", "Ωmega", " Texas "}, testNames...), testAP...) {
		a := Sanitize(x)
		if b := Sanitize(a); a != b {
			t.Errorf("sanitize %q is not idempotent: %q != %q", x, a, b)
		}
	}
}

func TestSanitizeAll(t *testing.T) {
	if v := SanitizeAll(nil); v != nil {
		t.Errorf("expected nil, got %q", v)
	}
	if v, exp := SanitizeAll([]string{"N.Y.", "", "new york"}), []string{"NY", "", "NEWYORK"}; !reflect.DeepEqual(v, exp) {
		t.Errorf("expected %q, got %q", exp, v)
	}
}
