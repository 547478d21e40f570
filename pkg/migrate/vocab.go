package migrate

// Controlled vocabularies of the source dataset. Every lookup is total:
// unknown codes map to the zero value and the caller skips the field.

// jurisdictions maps court jurisdiction codes to their display labels.
var jurisdictions = map[string]string{
	"F":   "Federal Appellate",
	"FD":  "Federal District",
	"FB":  "Federal Bankruptcy",
	"FBP": "Federal Bankruptcy Panel",
	"FS":  "Federal Special",
	"S":   "State Supreme",
	"SA":  "State Appellate",
	"ST":  "State Trial",
	"SS":  "State Special",
	"SAG": "State Attorney General",
	"TRS": "Tribal Supreme",
	"TRA": "Tribal Appellate",
	"TRT": "Tribal Trial",
	"TRX": "Tribal Special",
	"TS":  "Territory Supreme",
	"TA":  "Territory Appellate",
	"TT":  "Territory Trial",
	"TSP": "Territory Special",
	"MA":  "Military Appellate",
	"MT":  "Military Trial",
	"C":   "Committee",
	"I":   "International",
	"T":   "Testing",
}

// positionTypes maps position-type codes to job titles. Positions with an
// unmapped code are skipped entirely.
var positionTypes = map[string]string{
	"jud":              "Judge",
	"jus":              "Justice",
	"ad-law-jud":       "Administrative Law Judge",
	"act-jud":          "Acting Judge",
	"act-jus":          "Acting Justice",
	"act-pres-jud":     "Acting Presiding Judge",
	"act-c-admin-jus":  "Acting Chief Administrative Justice",
	"ad-pres-jus":      "Administrative Presiding Justice",
	"ass-jud":          "Associate Judge",
	"ass-jus":          "Associate Justice",
	"ass-c-jud":        "Associate Chief Judge",
	"asst-pres-jud":    "Assistant Presiding Judge",
	"ass-pres-jud":     "Associate Presiding Judge",
	"c-jud":            "Chief Judge",
	"c-jus":            "Chief Justice",
	"c-spec-m":         "Chief Special Master",
	"c-admin-jus":      "Chief Administrative Justice",
	"c-spec-tr-jud":    "Chief Special Trial Judge",
	"pres-jud":         "Presiding Judge",
	"pres-jus":         "Presiding Justice",
	"sup-jud":          "Supervising Judge",
	"com":              "Commissioner",
	"com-dep":          "Deputy Commissioner",
	"jud-pt":           "Judge Pro Tem",
	"jus-pt":           "Justice Pro Tem",
	"ref-jud-tr":       "Judge Trial Referee",
	"ref-off":          "Official Referee",
	"ref-state-trial":  "State Trial Referee",
	"ret-act-jus":      "Active Retired Justice",
	"ret-ass-jud":      "Retired Associate Judge",
	"ret-c-jud":        "Retired Chief Judge",
	"ret-jus":          "Retired Justice",
	"ret-senior-jud":   "Senior Judge",
	"mag":              "Magistrate",
	"c-mag":            "Chief Magistrate",
	"pres-mag":         "Presiding Magistrate",
	"mag-pt":           "Magistrate Pro Tem",
	"mag-rc":           "Magistrate (Recalled)",
	"mag-part-time":    "Magistrate (Part-Time)",
	"spec-chair":       "Special Chairman",
	"spec-jud":         "Special Judge",
	"spec-m":           "Special Master",
	"spec-scjcbc":      "Special Superior Court Judge for Complex Business Cases",
	"spec-tr-jud":      "Special Trial Judge",
	"chair":            "Chairman",
	"chan":             "Chancellor",
	"presi-jud":        "President",
	"res-jud":          "Reserve Judge",
	"trial-jud":        "Trial Judge",
	"vice-chan":        "Vice Chancellor",
	"vice-cj":          "Vice Chief Judge",
	"att-gen":          "Attorney General",
	"att-gen-ass":      "Assistant Attorney General",
	"att-gen-ass-spec": "Special Assistant Attorney General",
	"sen-counsel":      "Senior Counsel",
	"dep-sol-gen":      "Deputy Solicitor General",
	"pres":             "President of the United States",
	"gov":              "Governor",
	"mayor":            "Mayor",
	"clerk":            "Clerk",
	"clerk-chief-dep":  "Chief Deputy Clerk",
	"staff-atty":       "Staff Attorney",
	"prof":             "Professor",
	"adj-prof":         "Adjunct Professor",
	"prac":             "Practitioner",
	"pros":             "Prosecutor",
	"pub-def":          "Public Defender",
	"da":               "District Attorney",
	"ada":              "Assistant District Attorney",
	"legis":            "Legislator",
	"sen":              "Senator",
	"state-sen":        "State Senator",
}

// suffixes maps name-suffix codes to printable suffixes.
var suffixes = map[string]string{
	"jr": "Jr.",
	"sr": "Sr.",
	"1":  "I",
	"2":  "II",
	"3":  "III",
	"4":  "IV",
	"5":  "V",
}

// opinionTypes maps opinion-type codes to name prefixes. Unknown codes
// fall back to the plain "Opinion" prefix.
var opinionTypes = map[string]string{
	"010combined":          "Combined Opinion",
	"015unamimous":         "Unanimous Opinion",
	"020lead":              "Lead Opinion",
	"025plurality":         "Plurality Opinion",
	"030concurrence":       "Concurrence Opinion",
	"035concurrenceinpart": "In Part Opinion",
	"040dissent":           "Dissent",
	"050addendum":          "Addendum",
	"060remittitur":        "Remittitur",
	"070rehearing":         "Rehearing",
	"080onthemerits":       "On the Merits",
	"090onmotiontostrike":  "On Motion to Strike Testimony",
	"100trialcourt":        "Trial Court Document",
}

// partySources maps political-affiliation source codes to labels.
var partySources = map[string]string{
	"b": "Ballot",
	"a": "Appointer",
	"o": "Other",
}

// dateFormat maps a source date granularity to the display format of the
// published time value. Unknown granularities fall back to the full date.
func dateFormat(granularity string) string {
	switch granularity {
	case "%Y":
		return "yyyy"
	case "%Y-%m":
		return "MMMM yyyy"
	default:
		return "MMMM d, yyyy"
	}
}
