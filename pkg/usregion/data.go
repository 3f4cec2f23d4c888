package usregion

import "sync"

// USPS codes: https://pe.usps.com/text/pub28/28apb.htm
// AP abbreviations: AP Stylebook, "state names"
// Historical abbreviations: https://en.wikipedia.org/wiki/List_of_U.S._state_and_territory_abbreviations

var builtinStates = []Record{
	{Code: "AL", Name: "Alabama", AP: "Ala.", Other: []string{"Ala"}},
	{Code: "AK", Name: "Alaska", AP: "Alaska", Other: []string{"Alas", "Alas."}},
	{Code: "AZ", Name: "Arizona", AP: "Ariz.", Other: []string{"Ariz"}},
	{Code: "AR", Name: "Arkansas", AP: "Ark.", Other: []string{"Ark"}},
	{Code: "CA", Name: "California", AP: "Calif.", Other: []string{"Cal", "Calif", "Ca."}},
	{Code: "CO", Name: "Colorado", AP: "Colo.", Other: []string{"Col", "Cl"}},
	{Code: "CT", Name: "Connecticut", AP: "Conn.", Other: []string{"Conn", "Ct."}},
	{Code: "DE", Name: "Delaware", AP: "Del.", Other: []string{"Del", "De."}},
	{Code: "DC", Name: "District of Columbia", AP: "D.C.", Other: []string{"Wash DC", "Wash D.C.", "Washington DC", "Washington D.C."}},
	{Code: "FL", Name: "Florida", AP: "Fla.", Other: []string{"Fla", "Flor", "Flo"}},
	{Code: "GA", Name: "Georgia", AP: "Ga.", Other: nil},
	{Code: "HI", Name: "Hawaii", AP: "Hawaii", Other: []string{"H.I."}},
	{Code: "ID", Name: "Idaho", AP: "Idaho", Other: []string{"Ida", "Ida."}},
	{Code: "IL", Name: "Illinois", AP: "Ill.", Other: []string{"Ill", "Ills", "Ill's"}},
	{Code: "IN", Name: "Indiana", AP: "Ind.", Other: []string{"Ind"}},
	{Code: "IA", Name: "Iowa", AP: "Iowa", Other: []string{"Ioa", "Ia."}},
	{Code: "KS", Name: "Kansas", AP: "Kans.", Other: []string{"Kan", "Kans", "Ka"}},
	{Code: "KY", Name: "Kentucky", AP: "Ky.", Other: []string{"Ken", "Kent", "Kent."}},
	{Code: "LA", Name: "Louisiana", AP: "La.", Other: nil},
	{Code: "ME", Name: "Maine", AP: "Maine", Other: []string{"Me."}},
	{Code: "MD", Name: "Maryland", AP: "Md.", Other: nil},
	{Code: "MA", Name: "Massachusetts", AP: "Mass.", Other: []string{"Mass"}},
	{Code: "MI", Name: "Michigan", AP: "Mich.", Other: []string{"Mich"}},
	{Code: "MN", Name: "Minnesota", AP: "Minn.", Other: []string{"Minn"}},
	{Code: "MS", Name: "Mississippi", AP: "Miss.", Other: []string{"Miss"}},
	{Code: "MO", Name: "Missouri", AP: "Mo.", Other: nil},
	{Code: "MT", Name: "Montana", AP: "Mont.", Other: []string{"Mont"}},
	{Code: "NE", Name: "Nebraska", AP: "Neb.", Other: []string{"Neb", "Nebr", "Nebr.", "Nb"}},
	{Code: "NV", Name: "Nevada", AP: "Nev.", Other: []string{"Nev"}},
	{Code: "NH", Name: "New Hampshire", AP: "N.H.", Other: nil},
	{Code: "NJ", Name: "New Jersey", AP: "N.J.", Other: []string{"N. Jersey", "N Jersey"}},
	{Code: "NM", Name: "New Mexico", AP: "N.M.", Other: []string{"New M.", "N. Mex.", "N.Mex"}},
	{Code: "NY", Name: "New York", AP: "N.Y.", Other: []string{"N. York", "NYork"}},
	{Code: "NC", Name: "North Carolina", AP: "N.C.", Other: []string{"N. Car.", "N.Car.", "North Car."}},
	{Code: "ND", Name: "North Dakota", AP: "N.D.", Other: []string{"N. Dak.", "N.Dak.", "North Dak", "NoDak"}},
	{Code: "OH", Name: "Ohio", AP: "Ohio", Other: []string{"O."}},
	{Code: "OK", Name: "Oklahoma", AP: "Okla.", Other: []string{"Okla"}},
	{Code: "OR", Name: "Oregon", AP: "Ore.", Other: []string{"Ore", "Oreg", "Oreg."}},
	{Code: "PA", Name: "Pennsylvania", AP: "Pa.", Other: []string{"Penn", "Penn.", "Penna", "Penna."}},
	{Code: "RI", Name: "Rhode Island", AP: "R.I.", Other: []string{"R.I. & P.P.", "RI & PP", "R. Isl.", "Rhode Island and Providence Plantations"}},
	{Code: "SC", Name: "South Carolina", AP: "S.C.", Other: []string{"S. Car.", "S.Car.", "SCar.", "South Car."}},
	{Code: "SD", Name: "South Dakota", AP: "S.D.", Other: []string{"S. Dak.", "S.Dak.", "South Dak", "SoDak"}},
	{Code: "TN", Name: "Tennessee", AP: "Tenn.", Other: []string{"Tenn"}},
	{Code: "TX", Name: "Texas", AP: "Texas", Other: []string{"Tex", "Tex."}},
	{Code: "UT", Name: "Utah", AP: "Utah", Other: []string{"Ut."}},
	{Code: "VT", Name: "Vermont", AP: "Vt.", Other: []string{"Verm"}},
	{Code: "VA", Name: "Virginia", AP: "Va.", Other: []string{"Virg", "Virg."}},
	{Code: "WA", Name: "Washington", AP: "Wash.", Other: []string{"Wash", "Wn."}},
	{Code: "WV", Name: "West Virginia", AP: "W.Va", Other: []string{"W. Va.", "W. Virg.", "West Virg", "W.V."}},
	{Code: "WI", Name: "Wisconsin", AP: "Wis.", Other: []string{"Wis", "Wisc", "Wisc.", "WS"}},
	{Code: "WY", Name: "Wyoming", AP: "Wyo.", Other: []string{"Wyo"}},
}

var builtinTerritories = []Record{
	{Code: "AS", Name: "American Samoa", Other: []string{"A.S.", "Am. Samoa"}},
	{Code: "GU", Name: "Guam", Other: nil},
	{Code: "MP", Name: "Northern Mariana Islands", Other: []string{"N. Mariana Islands", "Mariana Islands", "CNMI"}},
	{Code: "PR", Name: "Puerto Rico", Other: []string{"P.R."}},
	{Code: "VI", Name: "Virgin Islands", Other: []string{"USVI", "U.S.V.I.", "US Virgin Islands", "U.S. Virgin Islands", "United States Virgin Islands"}},
}

var builtinAssociated = []Record{
	{Code: "FM", Name: "Federated States Of Micronesia", Other: []string{"Micronesia", "F.S.M."}},
	{Code: "MH", Name: "Marshall Islands", Other: []string{"Marshall Is."}},
	{Code: "PW", Name: "Palau", Other: []string{"Republic of Palau"}},
}

var builtinTable = sync.OnceValue(func() *Table {
	var rs []Record
	for _, x := range []struct {
		c  Class
		rs []Record
	}{
		{State, builtinStates},
		{Territory, builtinTerritories},
		{Associated, builtinAssociated},
	} {
		for _, r := range x.rs {
			r.Class = x.c
			rs = append(rs, r)
		}
	}
	t, err := NewTable(rs)
	if err != nil {
		panic("usregion: invalid builtin table: " + err.Error())
	}
	return t
})

// Builtin returns the table of USPS regions: the 50 states and DC, the five
// inhabited territories, and the three freely-associated states.
func Builtin() *Table {
	return builtinTable()
}
