package usregion

import (
	"strings"
	"sync"
	"testing"
)

var testCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL", "GA", "HI",
	"ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD", "MA", "MI", "MN",
	"MS", "MO", "MT", "NE", "NV", "NH", "NJ", "NM", "NY", "NC", "ND", "OH",
	"OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA",
	"WV", "WI", "WY", "AS", "GU", "MP", "PR", "VI", "FM", "MH", "PW",
}

var testNames = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado",
	"Connecticut", "Delaware", "District of Columbia", "Florida", "Georgia",
	"Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas", "Kentucky",
	"Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota",
	"Mississippi", "Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire",
	"New Jersey", "New Mexico", "New York", "North Carolina", "North Dakota",
	"Ohio", "Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina",
	"South Dakota", "Tennessee", "Texas", "Utah", "Vermont", "Virginia",
	"Washington", "West Virginia", "Wisconsin", "Wyoming", "American Samoa", "Guam",
	"Northern Mariana Islands", "Puerto Rico", "Virgin Islands",
	"Federated States Of Micronesia", "Marshall Islands", "Palau",
}

var testAP = []string{
	"Ala.", "Alaska", "Ariz.", "Ark.", "Calif.", "Colo.", "Conn.", "Del.",
	"D.C.", "Fla.", "Ga.", "Hawaii", "Idaho", "Ill.", "Ind.", "Iowa", "Kans.",
	"Ky.", "La.", "Maine", "Md.", "Mass.", "Mich.", "Minn.", "Miss.", "Mo.",
	"Mont.", "Neb.", "Nev.", "N.H.", "N.J.", "N.M.", "N.Y.", "N.C.", "N.D.",
	"Ohio", "Okla.", "Ore.", "Pa.", "R.I.", "S.C.", "S.D.", "Tenn.", "Texas",
	"Utah", "Vt.", "Va.", "Wash.", "W.Va", "Wis.", "Wyo.",
}

var all = Options{Classes: []Class{All}}

func TestBuiltin(t *testing.T) {
	b := Builtin()
	if b.Len() != len(testCodes) {
		t.Fatalf("expected %d records, got %d", len(testCodes), b.Len())
	}
	for i, r := range b.Records() {
		if r.Code != testCodes[i] {
			t.Errorf("record %d: expected code %q, got %q", i, testCodes[i], r.Code)
		}
		if r.Name != testNames[i] {
			t.Errorf("record %d: expected name %q, got %q", i, testNames[i], r.Name)
		}
	}
	for c, n := range map[Class]int{State: 51, Territory: 5, Associated: 3} {
		if x := len(b.Records(c)); x != n {
			t.Errorf("expected %d %s records, got %d", n, c, x)
		}
	}
}

func TestBuiltinUnambiguous(t *testing.T) {
	seen := map[string]string{}
	for _, r := range Builtin().Records() {
		for v := range Variants(r) {
			if o, ok := seen[v]; ok && o != r.Code {
				t.Errorf("variant %q is shared by %s and %s", v, o, r.Code)
			}
			seen[v] = r.Code
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	for _, code := range testCodes {
		if v, ok := Normalize(code, all); !ok || v != code {
			t.Errorf("normalize %q: expected %q, got %q (ok=%t)", code, code, v, ok)
		}
		if v, ok := Normalize(code, Options{Classes: all.Classes, Output: FieldOutput(FieldCode)}); !ok || v != code {
			t.Errorf("normalize %q (code): expected %q, got %q (ok=%t)", code, code, v, ok)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	for i, name := range testNames {
		if v, ok := Normalize(name, all); !ok || v != testCodes[i] {
			t.Errorf("normalize %q: expected %q, got %q (ok=%t)", name, testCodes[i], v, ok)
		}
	}
}

func TestNormalizeAP(t *testing.T) {
	for i, ap := range testAP {
		if v, ok := Normalize(ap, all); !ok || v != testCodes[i] {
			t.Errorf("normalize %q: expected %q, got %q (ok=%t)", ap, testCodes[i], v, ok)
		}
	}
}

func TestNormalizeOutput(t *testing.T) {
	for i, code := range testCodes {
		if v, ok := Normalize(code, Options{Classes: all.Classes, Output: FieldOutput(FieldName)}); !ok || v != testNames[i] {
			t.Errorf("normalize %q (name): expected %q, got %q (ok=%t)", code, testNames[i], v, ok)
		}
		if i < len(testAP) {
			if v, ok := Normalize(code, Options{Classes: all.Classes, Output: FieldOutput(FieldAP)}); !ok || v != testAP[i] {
				t.Errorf("normalize %q (ap): expected %q, got %q (ok=%t)", code, testAP[i], v, ok)
			}
		} else {
			if v, ok := Normalize(code, Options{Classes: all.Classes, Output: FieldOutput(FieldAP)}); ok {
				t.Errorf("normalize %q (ap): expected no result, got %q", code, v)
			}
		}
	}
	if v, ok := Normalize("DC", Options{Output: FieldOutput(FieldName)}); v != "District of Columbia" || !ok {
		t.Errorf("expected DC name, got %q (ok=%t)", v, ok)
	}
	if v, ok := Normalize("DC", Options{Output: FieldOutput(FieldAP)}); v != "D.C." || !ok {
		t.Errorf("expected DC ap, got %q (ok=%t)", v, ok)
	}
	if v, ok := Normalize("DC", Options{Output: FieldOutput("nonexistent")}); ok {
		t.Errorf("expected no result for unknown field, got %q", v)
	}
}

func TestNormalizeCustom(t *testing.T) {
	v, ok := Normalize("DC", Options{
		Output: CustomOutput(func(names map[string]string) map[string]string {
			names["DC"] = "Washington DC"
			return names
		}),
	})
	if !ok || v != "Washington DC" {
		t.Errorf("expected customized name, got %q (ok=%t)", v, ok)
	}

	// the projection must not leak into later calls
	if v, _ := Normalize("DC", Options{Output: FieldOutput(FieldName)}); v != "District of Columbia" {
		t.Errorf("projection modified the table: got %q", v)
	}

	// the projection sees the whole table regardless of the class filter
	var n int
	Normalize("AL", Options{
		Output: CustomOutput(func(names map[string]string) map[string]string {
			n = len(names)
			return names
		}),
	})
	if n != len(testCodes) {
		t.Errorf("expected projection to see %d names, got %d", len(testCodes), n)
	}

	for name, fn := range map[string]Projection{
		"Nil":     nil,
		"Missing": func(map[string]string) map[string]string { return map[string]string{} },
		"Empty":   func(map[string]string) map[string]string { return map[string]string{"DC": ""} },
		"NilMap":  func(map[string]string) map[string]string { return nil },
	} {
		if v, ok := Normalize("DC", Options{Output: CustomOutput(fn)}); ok {
			t.Errorf("%s: expected no result, got %q", name, v)
		}
	}

	if v, ok := Normalize("Nowhere", Options{
		Output: CustomOutput(func(map[string]string) map[string]string {
			t.Error("projection called for unmatched input")
			return nil
		}),
	}); ok {
		t.Errorf("expected no result, got %q", v)
	}
}

func TestNormalizeClass(t *testing.T) {
	for _, c := range []struct {
		Classes []Class
		Input   string
		Output  string
	}{
		{nil, "AL", "AL"},
		{nil, "AS", ""},
		{nil, "FM", ""},
		{[]Class{State}, "AL", "AL"},
		{[]Class{State}, "AS", ""},
		{[]Class{State}, "FM", ""},
		{[]Class{Territory}, "AL", ""},
		{[]Class{Territory}, "AS", "AS"},
		{[]Class{Territory}, "FM", ""},
		{[]Class{Associated}, "AL", ""},
		{[]Class{Associated}, "AS", ""},
		{[]Class{Associated}, "FM", "FM"},
		{[]Class{Territory, Associated}, "AS", "AS"},
		{[]Class{Territory, Associated}, "FM", "FM"},
		{[]Class{Territory, Associated}, "AL", ""},
		{[]Class{State, All}, "Micronesia", "FM"},
		{[]Class{All}, "Micronesia", "FM"},
		{[]Class{"bogus"}, "AL", ""},
		{[]Class{"bogus", Territory}, "AS", "AS"},
	} {
		v, ok := Normalize(c.Input, Options{Classes: c.Classes})
		if ok != (c.Output != "") || v != c.Output {
			t.Errorf("normalize %q (%v): expected %q, got %q (ok=%t)", c.Input, c.Classes, c.Output, v, ok)
		}
	}
}

func TestNormalizeOmit(t *testing.T) {
	for _, c := range []struct {
		Omit  []string
		Input string
	}{
		{[]string{"DC"}, "DC"},
		{[]string{"AL", "DC"}, "DC"},
		{[]string{"AL", "DC"}, "AL"},
		{[]string{" dc "}, "District of Columbia"},
	} {
		if v, ok := Normalize(c.Input, Options{Omit: c.Omit}); ok {
			t.Errorf("normalize %q (omit %q): expected no result, got %q", c.Input, c.Omit, v)
		}
	}
	if v, ok := Normalize("AL", Options{Omit: []string{"DC"}}); !ok || v != "AL" {
		t.Errorf("omitting another code should not affect the result, got %q (ok=%t)", v, ok)
	}
	for _, code := range testCodes {
		if v, ok := Normalize(code, Options{Classes: all.Classes, Omit: []string{code}}); ok {
			t.Errorf("normalize %q (omit itself): expected no result, got %q", code, v)
		}
	}
}

func TestNormalizeInvariance(t *testing.T) {
	for _, c := range [][2]string{
		// case
		{"Al", "AL"},
		{"CalIfORnia", "CA"},
		{"georgia", "GA"},

		// spaces
		{"New Jersey", "NJ"},
		{" Hawaii ", "HI"},
		{" New York", "NY"},
		{"I D", "ID"},
		{"\tTexas\n", "TX"},

		// periods
		{"N.M.", "NM"},
		{"Utah.", "UT"},
		{"South. Dakota.", "SD"},
		{"N. H.", "NH"},
		{" N. D. ", "ND"},

		// other junk
		{"Calif.", "CA"},
		{"Ohio!", "OH"},
		{"New-York", "NY"},
		{"1 Iowa 2", "IA"},
	} {
		if v, ok := Normalize(c[0], all); !ok || v != c[1] {
			t.Errorf("normalize %q: expected %q, got %q (ok=%t)", c[0], c[1], v, ok)
		}
	}
}

func TestNormalizeAlternate(t *testing.T) {
	for _, c := range [][2]string{
		{"Ala", "AL"}, {"Ala.", "AL"}, {"Alas", "AK"}, {"Ariz", "AZ"},
		{"Ark", "AR"}, {"CAL", "CA"}, {"Col", "CO"}, {"Cl", "CO"},
		{"Conn", "CT"}, {"Del", "DE"}, {"WashDC", "DC"}, {"D.C.", "DC"},
		{"Wash D.C.", "DC"}, {"Washington DC", "DC"}, {"FLA", "FL"},
		{"Flor", "FL"}, {"Ga.", "GA"}, {"Ida.", "ID"}, {"Ill", "IL"},
		{"Ills.", "IL"}, {"Ill's", "IL"}, {"Ind.", "IN"}, {"Ioa.", "IA"},
		{"Kans.", "KS"}, {"KA", "KS"}, {"Ken", "KY"}, {"Kent.", "KY"},
		{"Mass.", "MA"}, {"Mich.", "MI"}, {"Minn.", "MN"}, {"Miss.", "MS"},
		{"Mont.", "MT"}, {"NEB", "NE"}, {"Nebr.", "NE"}, {"Nb", "NE"},
		{"Nev.", "NV"}, {"N.H.", "NH"}, {"N. Jersey", "NJ"}, {"New M.", "NM"},
		{"N.Mex", "NM"}, {"NYork", "NY"}, {"N.Car.", "NC"}, {"North Car.", "NC"},
		{"NoDak", "ND"}, {"N.Dak.", "ND"}, {"North Dak", "ND"}, {"O.", "OH"},
		{"Okla.", "OK"}, {"Ore.", "OR"}, {"Oreg.", "OR"}, {"Penn.", "PA"},
		{"Penna.", "PA"}, {"RI & PP", "RI"}, {"R. Isl.", "RI"}, {"SCar.", "SC"},
		{"South Car.", "SC"}, {"SoDak", "SD"}, {"S. Dak.", "SD"},
		{"South Dak", "SD"}, {"Tenn.", "TN"}, {"Tex.", "TX"}, {"Virg.", "VA"},
		{"Wash.", "WA"}, {"Wn.", "WA"}, {"W. Virg.", "WV"}, {"WEST VIRG", "WV"},
		{"Wis.", "WI"}, {"Wisc.", "WI"}, {"WS", "WI"}, {"Wyo.", "WY"},
		{"USVI", "VI"}, {"US Virgin Islands", "VI"}, {"Micronesia", "FM"},
	} {
		if v, ok := Normalize(c[0], all); !ok || v != c[1] {
			t.Errorf("normalize %q: expected %q, got %q (ok=%t)", c[0], c[1], v, ok)
		}
	}
}

func TestNormalizeNoMatch(t *testing.T) {
	for _, x := range []string{"", " ", "...", "123", "é", "Atlantis", "New", "North"} {
		if v, ok := Normalize(x, all); ok {
			t.Errorf("normalize %q: expected no result, got %q", x, v)
		}
	}
}

func TestNormalizePerturbed(t *testing.T) {
	perturb := []func(string) string{
		strings.ToLower,
		strings.ToUpper,
		func(s string) string { return " " + s + " " },
		func(s string) string { return s + "." },
		func(s string) string { return strings.Join(strings.Split(s, ""), " ") },
		func(s string) string { return strings.Join(strings.Split(s, ""), ".") },
	}
	for _, r := range Builtin().Records() {
		for _, x := range append([]string{r.Code, r.Name, r.AP}, r.Other...) {
			if x == "" {
				continue
			}
			exp, ok := Normalize(x, all)
			if !ok {
				t.Errorf("normalize %q: expected a result", x)
				continue
			}
			for i, fn := range perturb {
				if v, ok := Normalize(fn(x), all); !ok || v != exp {
					t.Errorf("normalize perturbation %d of %q (%q): expected %q, got %q", i, x, fn(x), exp, v)
				}
			}
		}
	}
}

func TestResolverConcurrent(t *testing.T) {
	r := NewResolver(Builtin())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j, code := range testCodes {
				if v, ok := r.Normalize(testNames[j], all); !ok || v != code {
					t.Errorf("normalize %q: expected %q, got %q", testNames[j], code, v)
				}
			}
		}()
	}
	wg.Wait()
}

func TestResolverSynthetic(t *testing.T) {
	tbl, err := NewTable([]Record{
		{Code: "AA", Name: "Alpha", Other: []string{"Shared"}, Class: State},
		{Code: "BB", Name: "Bravo", Other: []string{"Shared"}, Class: Territory},
		{Code: "CC", Name: "Charlie", Class: Associated},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewResolver(tbl)

	for _, c := range []struct {
		Opt    Options
		Input  string
		Output string
	}{
		{Options{}, "alpha", "AA"},
		{Options{}, "bravo", ""},
		{Options{Classes: []Class{All}}, "charlie", "CC"},
		// first match in class order
		{Options{Classes: []Class{All}}, "shared", "AA"},
		{Options{Classes: []Class{Territory, State}}, "shared", "BB"},
		{Options{Classes: []Class{All}, Omit: []string{"AA"}}, "shared", "BB"},
		{Options{Classes: []Class{All}, Omit: []string{"AA", "BB"}}, "shared", ""},
	} {
		v, ok := r.Normalize(c.Input, c.Opt)
		if ok != (c.Output != "") || v != c.Output {
			t.Errorf("normalize %q (%+v): expected %q, got %q (ok=%t)", c.Input, c.Opt, c.Output, v, ok)
		}
	}

	// omit codes are case-insensitive, so codes which aren't upper-case
	// can't be in a table
	if _, err := NewTable([]Record{{Code: "ca", Name: "California", Class: State}}); err == nil {
		t.Errorf("expected error for lowercase code")
	}
	for _, omit := range []string{"cc", " Cc "} {
		if v, ok := r.Match("charlie", Options{Classes: []Class{All}, Omit: []string{omit}}); ok {
			t.Errorf("omit %q: expected no match, got %q", omit, v)
		}
	}
}
