// Package regionmap maps IP address location info to U.S. regions.
//
// The mapping is based on a combination of data from:
//
//   - RFC 1918 private IPv4 addresses (https://www.rfc-editor.org/rfc/rfc1918).
//   - RFC 4193 private IPv6 addresses (https://www.rfc-editor.org/rfc/rfc4193).
//   - ISO 3166-1 codes for the territories and freely-associated states, which
//     are identical to their USPS codes.
//   - US Census (https://www2.census.gov/geo/pdfs/maps-data/maps/reference/us_regdiv.pdf).
//   - IP2Location region names (https://www.ip2location.com/free/iso3166-2).
package regionmap

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/pg9182/ip2x"
	"github.com/r2northstar/usregion/pkg/usregion"
)

// ErrNotUS is returned when a location is outside the U.S. and its associated
// regions.
var ErrNotUS = errors.New("location is not in a U.S. region")

// Location is a resolved U.S. location.
type Location struct {
	Code  string         // USPS code
	Class usregion.Class // class of Code
}

// GetLocation gets the U.S. region for the provided IP address and IP2Location
// record. The IP2Location record should have at least CountryShort and Region
// fields. If the address is private or the location isn't in a U.S. region,
// ErrNotUS is returned.
func GetLocation(res *usregion.Resolver, ip netip.Addr, r ip2x.Record) (Location, error) {
	if ip.IsPrivate() || ip.IsLoopback() {
		return Location{}, ErrNotUS
	}

	country, ok := r.GetString(ip2x.CountryCode)
	if !ok {
		return Location{}, fmt.Errorf("missing country field in ip2location data")
	}

	region, ok := r.GetString(ip2x.Region)
	if !ok {
		return Location{}, fmt.Errorf("missing region field in ip2location data")
	}

	return FromFields(res, country, region)
}

// FromFields gets the U.S. region for an ISO 3166-1 country code and an
// IP2Location region name.
func FromFields(res *usregion.Resolver, country, region string) (Location, error) {
	switch country {
	case "US":
		// state names: https://www.ip2location.com/free/iso3166-2 @ 2022-11-20
		if code, ok := res.Match(region, usregion.Options{Classes: []usregion.Class{usregion.State}}); ok {
			return Location{code, usregion.State}, nil
		}
		if region == "" || region == "-" {
			return Location{}, fmt.Errorf("missing US state")
		}
		// IP2Location occasionally reports territories under US
		if code, ok := res.Match(region, usregion.Options{Classes: []usregion.Class{usregion.Territory}}); ok {
			return Location{code, usregion.Territory}, nil
		}
		return Location{}, fmt.Errorf("unhandled US state %q", region)

	case "AS", "GU", "MP", "PR", "VI":
		return Location{country, usregion.Territory}, nil

	case "FM", "MH", "PW":
		return Location{country, usregion.Associated}, nil

	case "UM":
		// minor outlying islands don't have a USPS code
		return Location{}, ErrNotUS

	case "":
		return Location{}, fmt.Errorf("missing country")

	default:
		return Location{}, ErrNotUS
	}
}

// Census gets the US Census Bureau region and division for a state (including
// DC) code. Territories and freely-associated states aren't part of any census
// region.
func Census(code string) (region, division string, ok bool) {
	// https://www2.census.gov/geo/pdfs/maps-data/maps/reference/us_regdiv.pdf @ 2022-11-20
	switch code {
	case "CT", "ME", "MA", "NH", "RI", "VT":
		return "Northeast", "New England", true
	case "NJ", "NY", "PA":
		return "Northeast", "Middle Atlantic", true
	case "IL", "IN", "MI", "OH", "WI":
		return "Midwest", "East North Central", true
	case "IA", "KS", "MN", "MO", "NE", "ND", "SD":
		return "Midwest", "West North Central", true
	case "DE", "DC", "FL", "GA", "MD", "NC", "SC", "VA", "WV":
		return "South", "South Atlantic", true
	case "AL", "KY", "MS", "TN":
		return "South", "East South Central", true
	case "AR", "LA", "OK", "TX":
		return "South", "West South Central", true
	case "AZ", "CO", "ID", "MT", "NV", "NM", "UT", "WY":
		return "West", "Mountain", true
	case "AK", "CA", "HI", "OR", "WA":
		return "West", "Pacific", true
	}
	return "", "", false
}
