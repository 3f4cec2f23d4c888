package usregion

import (
	"fmt"
	"strings"
)

// ParseClass parses a case-insensitive class name, including All.
func ParseClass(s string) (Class, bool) {
	switch c := Class(strings.ToLower(strings.TrimSpace(s))); c {
	case State, Territory, Associated, All:
		return c, true
	}
	return "", false
}

// ParseClasses parses comma-separated class names from each of ss. Empty items
// are ignored.
func ParseClasses(ss ...string) ([]Class, error) {
	var cs []Class
	for _, s := range ss {
		for _, x := range strings.Split(s, ",") {
			if strings.TrimSpace(x) == "" {
				continue
			}
			c, ok := ParseClass(x)
			if !ok {
				return nil, fmt.Errorf("unknown region class %q", x)
			}
			cs = append(cs, c)
		}
	}
	return cs, nil
}

// ParseField parses a case-insensitive field name. The USPS, full name, and
// press forms are accepted too.
func ParseField(s string) (Field, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "code", "usps":
		return FieldCode, true
	case "name", "fullname", "full_name":
		return FieldName, true
	case "ap", "press":
		return FieldAP, true
	}
	return "", false
}

// SplitCodes splits comma-separated codes from each of ss, dropping empty ones.
func SplitCodes(ss ...string) []string {
	var r []string
	for _, s := range ss {
		for _, x := range strings.Split(s, ",") {
			if x = strings.TrimSpace(x); x != "" {
				r = append(r, x)
			}
		}
	}
	return r
}

// ParseAliases parses comma-separated CODE=alias pairs from each of ss,
// grouping the aliases by upper-cased code. Empty items are ignored.
func ParseAliases(ss ...string) (map[string][]string, error) {
	m := map[string][]string{}
	for _, s := range ss {
		for _, x := range strings.Split(s, ",") {
			if strings.TrimSpace(x) == "" {
				continue
			}
			code, alias, ok := strings.Cut(x, "=")
			if !ok {
				return nil, fmt.Errorf("parse alias %q: missing equals sign", x)
			}
			code = strings.ToUpper(strings.TrimSpace(code))
			alias = strings.TrimSpace(alias)
			if code == "" || alias == "" {
				return nil, fmt.Errorf("parse alias %q: code and alias must not be empty", x)
			}
			m[code] = append(m[code], alias)
		}
	}
	return m, nil
}
